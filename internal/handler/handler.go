// Package handler exposes the portal views over HTTP.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campuslink/internal/portal"
	"campuslink/internal/remote"
)

type Handler struct {
	app    *portal.App
	health func(*gin.Context) error
}

// New serves app. health reports whether the store is reachable.
func New(app *portal.App, health func(*gin.Context) error) *Handler {
	return &Handler{app: app, health: health}
}

// Routes mounts every portal route under /api.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/session", h.Session)
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)

		api.GET("/dashboard", h.Dashboard)
		api.POST("/dashboard/refresh", h.RefreshDashboard)

		api.GET("/notifications", h.Notifications)
		api.POST("/notifications/read-all", h.MarkAllRead)
		api.POST("/notifications/:id/read", h.MarkRead)
		api.DELETE("/notifications/:id", h.Dismiss)

		api.GET("/discussions", h.Discussions)
		api.POST("/discussions", h.PostDiscussion)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/login", h.AdminLogin)
		admin.POST("/logout", h.AdminLogout)

		admin.GET("/events", h.adminOnly(h.ListEvents))
		admin.POST("/events", h.CreateEvent)
		admin.PUT("/events/:id", h.UpdateEvent)
		admin.DELETE("/events/:id", h.DeleteEvent)

		admin.GET("/notifications", h.adminOnly(h.ListNotifications))
		admin.POST("/notifications", h.CreateNotification)
		admin.PUT("/notifications/:id", h.UpdateNotification)
		admin.DELETE("/notifications/:id", h.DeleteNotification)

		admin.GET("/updates", h.adminOnly(h.ListUpdates))
		admin.POST("/updates", h.CreateUpdate)
		admin.PUT("/updates/:id", h.UpdateUpdate)
		admin.DELETE("/updates/:id", h.DeleteUpdate)
	}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	storeOK := h.health == nil || h.health(c) == nil
	status := http.StatusOK
	if !storeOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "store": storeOK})
}

// ---------- Error mapping ----------

// userMessages holds the text shown to users for the portal's sentinel errors.
var userMessages = map[error]string{
	portal.ErrLoginRequired:   "Please login to participate in discussions.",
	portal.ErrAdminRequired:   "Admin login required.",
	portal.ErrAccountNotFound: "We couldn't find an account with that email. Please register to continue.",
	portal.ErrNotFound:        "Not found.",
}

func userMessage(err error) string {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return err.Error()
}

// fail writes err with the status matching its kind.
func fail(c *gin.Context, err error) {
	var (
		verr *portal.ValidationError
		derr *portal.DuplicateError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &derr):
		c.JSON(http.StatusConflict, gin.H{"error": derr.Message})
	case errors.Is(err, portal.ErrLoginRequired), errors.Is(err, portal.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": userMessage(err)})
	case errors.Is(err, portal.ErrAccountNotFound), errors.Is(err, portal.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": userMessage(err)})
	case remote.IsHTTP(err) && remote.StatusCode(err) == http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case remote.IsNetwork(err), remote.IsHTTP(err):
		log.Printf("store request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The store could not complete the request. Please try again."})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// locked writes the placeholder of a gate that is not authorized.
func locked(c *gin.Context, g *portal.Gate) {
	c.JSON(http.StatusForbidden, gin.H{"authorized": false, "message": g.Placeholder()})
}

func (h *Handler) adminOnly(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.app.AdminGate.Authorized() {
			locked(c, h.app.AdminGate)
			return
		}
		next(c)
	}
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
