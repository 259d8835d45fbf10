package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studymate-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.POST("/documents", h.create)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.rename)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	var (
		docs []Document
		err  error
	)
	if subjectID := strings.TrimSpace(c.Query("subjectId")); subjectID != "" {
		c.Set("subjectId", subjectID)
		docs, err = h.Svc.ListBySubject(c.Request.Context(), subjectID)
	} else {
		docs, err = h.Svc.ListAll(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, ToResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set("subjectId", req.SubjectID)

	doc, err := h.Svc.Create(c.Request.Context(), req.Name, req.URL, req.Size, req.Pages, req.SubjectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("documentId", doc.ID)
	respond.Created(c, ToResponse(doc))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)
	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ToResponse(doc))
}

func (h *Handler) rename(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)
	var req renameRequest
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
	c.Set("documentId", id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
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
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	}
}
