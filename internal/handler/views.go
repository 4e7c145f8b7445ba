package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campuslink/internal/portal"
)

// ---------- Session ----------

func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Session.State())
}

func (h *Handler) Register(c *gin.Context) {
	var req portal.Registration
	if !bind(c, &req) {
		return
	}
	user, err := h.app.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req portal.Credentials
	if !bind(c, &req) {
		return
	}
	if err := h.app.Accounts.Login(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Session.State())
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.app.Accounts.Logout(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Session.State())
}

// ---------- Dashboard ----------

func (h *Handler) Dashboard(c *gin.Context) {
	if !h.app.DashboardGate.Authorized() {
		locked(c, h.app.DashboardGate)
		return
	}
	c.JSON(http.StatusOK, h.app.Dashboard.Render(c.Query("q")))
}

func (h *Handler) RefreshDashboard(c *gin.Context) {
	if !h.app.DashboardGate.Authorized() {
		locked(c, h.app.DashboardGate)
		return
	}
	h.app.Dashboard.Refresh()
	c.Status(http.StatusAccepted)
}

// ---------- Notifications ----------

func (h *Handler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Notifications.Render())
}

func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.app.Notifications.MarkRead(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": h.app.Notifications.UnreadCount()})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	h.app.Notifications.MarkAllRead()
	c.JSON(http.StatusOK, gin.H{"unread": 0})
}

func (h *Handler) Dismiss(c *gin.Context) {
	if err := h.app.Notifications.Dismiss(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": h.app.Notifications.UnreadCount()})
}

// ---------- Discussion ----------

func (h *Handler) Discussions(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Discussion.Render(c.Query("q"), c.Query("category"), c.DefaultQuery("sort", portal.SortRecent)))
}

func (h *Handler) PostDiscussion(c *gin.Context) {
	var req portal.NewTopic
	if !bind(c, &req) {
		return
	}
	topic, err := h.app.Discussion.Post(req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}
