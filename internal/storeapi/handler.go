// Package storeapi exposes collection backends over a collection-style REST
// API: GET/POST /:collection and GET/PUT/DELETE /:collection/:id.
package storeapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campuslink/internal/collection"
	"campuslink/internal/metrics"
)

// unknownLabel replaces collection names the backend rejects in metrics.
const unknownLabel = "unknown"

// Handler serves one backend.
type Handler struct {
	backend collection.Backend
	known   func(string) bool
}

// New wraps b. Wrap b with collection.Restrict to limit which collections
// are reachable; only those names then appear as metric labels.
func New(b collection.Backend) *Handler {
	h := &Handler{backend: b}
	if r, ok := b.(interface{ Allowed(string) bool }); ok {
		h.known = r.Allowed
	}
	return h
}

// Register mounts the collection routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/:collection", h.List)
	r.POST("/:collection", h.Create)
	r.GET("/:collection/:id", h.Get)
	r.PUT("/:collection/:id", h.Replace)
	r.DELETE("/:collection/:id", h.Delete)
}

// List returns the records matching every query parameter.
func (h *Handler) List(c *gin.Context) {
	coll := c.Param("collection")
	filter := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			filter[k] = v[0]
		}
	}
	recs, err := h.backend.List(c.Request.Context(), coll, filter)
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	h.ok(c, "list", http.StatusOK, recs)
}

// Get returns one record.
func (h *Handler) Get(c *gin.Context) {
	rec, err := h.backend.Get(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	h.ok(c, "get", http.StatusOK, rec)
}

// Create stores the body and returns it with its id.
func (h *Handler) Create(c *gin.Context) {
	var rec collection.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		h.badRequest(c, "create", err)
		return
	}
	out, err := h.backend.Create(c.Request.Context(), c.Param("collection"), rec)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	h.ok(c, "create", http.StatusCreated, out)
}

// Replace swaps the whole record at :id.
func (h *Handler) Replace(c *gin.Context) {
	var rec collection.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		h.badRequest(c, "replace", err)
		return
	}
	out, err := h.backend.Replace(c.Request.Context(), c.Param("collection"), c.Param("id"), rec)
	if err != nil {
		h.fail(c, "replace", err)
		return
	}
	h.ok(c, "replace", http.StatusOK, out)
}

// Delete removes the record at :id.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.backend.Delete(c.Request.Context(), c.Param("collection"), c.Param("id")); err != nil {
		h.fail(c, "delete", err)
		return
	}
	h.ok(c, "delete", http.StatusOK, gin.H{})
}

func (h *Handler) ok(c *gin.Context, op string, code int, body any) {
	h.count(c, op, code)
	c.JSON(code, body)
}

func (h *Handler) badRequest(c *gin.Context, op string, err error) {
	h.count(c, op, http.StatusBadRequest)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, collection.ErrUnknownCollection), errors.Is(err, collection.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, collection.ErrDuplicateID):
		code = http.StatusConflict
	default:
		log.Printf("store %s %s: %v", op, c.Param("collection"), err)
	}
	h.count(c, op, code)
	c.JSON(code, gin.H{"error": err.Error()})
}

func (h *Handler) count(c *gin.Context, op string, code int) {
	coll := c.Param("collection")
	if h.known != nil && !h.known(coll) {
		coll = unknownLabel
	}
	metrics.CollectionOps.WithLabelValues(coll, op, strconv.Itoa(code)).Inc()
}
