package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campuslink/internal/portal"
)

// ---------- Admin session ----------

func (h *Handler) AdminLogin(c *gin.Context) {
	var req portal.Credentials
	if !bind(c, &req) {
		return
	}
	if err := h.app.Accounts.AdminLogin(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Session.State())
}

func (h *Handler) AdminLogout(c *gin.Context) {
	if err := h.app.Accounts.AdminLogout(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Session.State())
}

// ---------- Events ----------

func (h *Handler) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.AdminEvents.Render(c.Query("q")))
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req portal.EventForm
	if !bind(c, &req) {
		return
	}
	ev, err := h.app.AdminEvents.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	var req portal.EventForm
	if !bind(c, &req) {
		return
	}
	ev, err := h.app.AdminEvents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.app.AdminEvents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Notifications ----------

func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.AdminNotifications.Render(c.Query("q")))
}

func (h *Handler) CreateNotification(c *gin.Context) {
	var req portal.NotificationForm
	if !bind(c, &req) {
		return
	}
	n, err := h.app.AdminNotifications.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) UpdateNotification(c *gin.Context) {
	var req portal.NotificationForm
	if !bind(c, &req) {
		return
	}
	n, err := h.app.AdminNotifications.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.app.AdminNotifications.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Updates ----------

func (h *Handler) ListUpdates(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.AdminUpdates.Render(c.Query("q")))
}

func (h *Handler) CreateUpdate(c *gin.Context) {
	var req portal.UpdateForm
	if !bind(c, &req) {
		return
	}
	u, err := h.app.AdminUpdates.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUpdate(c *gin.Context) {
	var req portal.UpdateForm
	if !bind(c, &req) {
		return
	}
	u, err := h.app.AdminUpdates.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUpdate(c *gin.Context) {
	if err := h.app.AdminUpdates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
