package appstate

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studymate-backend/internal/documents"
	"studymate-backend/internal/shared/server/respond"
)

// MenuItem describes one study material view.
type MenuItem struct {
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// ContentResponse is the study material screen for one document.
type ContentResponse struct {
	Document documents.DocumentResponse `json:"document"`
	Selected *MenuItem                  `json:"selected"`
	Menu     []MenuItem                 `json:"menu"`
}

// Menu returns the selectable views in display order.
func Menu() []MenuItem {
	out := make([]MenuItem, 0, len(ContentTypes))
	for _, ct := range ContentTypes {
		out = append(out, MenuItem{Type: ct, Title: ct.Title(), Description: ct.Description()})
	}
	return out
}

// ContentHandler serves the per-document content view through a request-scoped DocsStore.
type ContentHandler struct {
	Docs *documents.Service
}

func NewContentHandler(docs *documents.Service) *ContentHandler {
	return &ContentHandler{Docs: docs}
}

func (h *ContentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/content/:type", h.view)
}

func (h *ContentHandler) view(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	ct, err := ParseContentType(c.Param("type"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"allowed": ContentTypes})
		return
	}
	doc, err := h.Docs.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return
	}

	store := NewDocsStore(h.Docs)
	store.SetSelectedDoc(&doc)
	st := store.SetSelectedContent(ct)

	resp := ContentResponse{Document: documents.ToResponse(*st.SelectedDoc), Menu: Menu()}
	if st.SelectedContent != ContentNone {
		resp.Selected = &MenuItem{
			Type:        st.SelectedContent,
			Title:       st.SelectedContent.Title(),
			Description: st.SelectedContent.Description(),
		}
	}
	respond.OK(c, resp)
}
