package subjects

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studymate-backend/internal/shared/server/respond"
)

// CreateFunc creates a subject. The default goes straight to the Service; the API server
// swaps in a store-backed version that rejects duplicate names.
type CreateFunc func(ctx context.Context, name string) (Subject, error)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc    *Service
	Create CreateFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, create CreateFunc) *Handler {
	if create == nil {
		create = svc.Create
	}
	return &Handler{Svc: svc, Create: create}
}

// RegisterRoutes attaches subject routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subjects", h.list)
	rg.POST("/subjects", h.create)
	rg.GET("/subjects/:id", h.get)
	rg.PATCH("/subjects/:id", h.rename)
	rg.DELETE("/subjects/:id", h.delete)
	rg.POST("/subjects/:id/urls", h.addURL)
	rg.DELETE("/subjects/:id/urls", h.removeURL)
}

func (h *Handler) list(c *gin.Context) {
	subs, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]SubjectResponse, 0, len(subs))
	for _, s := range subs {
		resp = append(resp, toResponse(s))
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sub, err := h.Create(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("subjectId", sub.ID)
	respond.Created(c, toResponse(sub))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("subjectId", id)
	sub, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(sub))
}

func (h *Handler) rename(c *gin.Context) {
	id := c.Param("id")
	c.Set("subjectId", id)
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := h.Svc.Rename(c.Request.Context(), id, req.Name); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("subjectId", id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) addURL(c *gin.Context) {
	h.mutateURL(c, h.Svc.AddURL)
}

func (h *Handler) removeURL(c *gin.Context) {
	h.mutateURL(c, h.Svc.RemoveURL)
}

func (h *Handler) mutateURL(c *gin.Context, fn func(ctx context.Context, id, url string) error) {
	id := c.Param("id")
	c.Set("subjectId", id)
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := fn(c.Request.Context(), id, req.URL); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	var opErr *OpError
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.As(err, &opErr) && opErr.Missing:
		respond.Error(c, http.StatusNotFound, "not_found", "subject not found", nil)
	case errors.Is(err, ErrDuplicateName):
		respond.Error(c, http.StatusConflict, "duplicate_name", "Subject with this name already exists", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	}
}
