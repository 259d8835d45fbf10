package uploads

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"studymate-backend/internal/appstate"
	"studymate-backend/internal/documents"
	"studymate-backend/internal/shared/server/respond"
	"studymate-backend/internal/shared/storage/object"
)

const maxUploadBytes = 50 << 20

// Handler accepts PDF uploads over multipart and runs them through a per-request Orchestrator.
type Handler struct {
	Store      object.ObjectStore
	Summarizer Summarizer
	Docs       appstate.DocumentRepository
	Now        func() time.Time
	MaxBytes   int64
}

// NewHandler constructs a Handler.
func NewHandler(store object.ObjectStore, summarizer Summarizer, docs appstate.DocumentRepository) *Handler {
	return &Handler{Store: store, Summarizer: summarizer, Docs: docs, MaxBytes: maxUploadBytes}
}

type uploadResponse struct {
	Document    documents.DocumentResponse `json:"document"`
	DownloadURL string                     `json:"downloadUrl"`
	State       string                     `json:"state"`
}

// RegisterRoutes attaches the upload route. Extra handlers, such as a rate limiter, run first.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, before ...gin.HandlerFunc) {
	rg.POST("/subjects/:id/uploads", append(before, h.upload)...)
}

// RegisterFileRoutes serves stored objects. Only useful for the local store.
func RegisterFileRoutes(rg *gin.RouterGroup, store object.ObjectStore) {
	rg.GET("/files/*key", serveFile(store))
}

func (h *Handler) upload(c *gin.Context) {
	subjectID := strings.TrimSpace(c.Param("id"))
	c.Set("subjectId", subjectID)

	fh, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Please select a PDF file", nil)
		return
	}
	limit := h.MaxBytes
	if limit <= 0 {
		limit = maxUploadBytes
	}
	if fh.Size > limit {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds size limit", map[string]any{"maxBytes": limit})
		return
	}
	if ok, err := isPDF(fh); err != nil || !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only PDF files are accepted", nil)
		return
	}

	orch := New(Config{
		Picker: StaticPicker{Asset: Asset{
			Name:     fh.Filename,
			Size:     fh.Size,
			URI:      "multipart:" + fh.Filename,
			MimeType: pdfMIME,
		}},
		Opener: OpenerFunc(func(ctx context.Context, _ Asset) (io.ReadCloser, error) {
			return fh.Open()
		}),
		Store:      h.Store,
		Summarizer: h.Summarizer,
		Docs:       appstate.NewDocsStore(h.Docs),
		Now:        h.Now,
	})

	ctx := c.Request.Context()
	if _, err := orch.Pick(ctx); err != nil {
		writeFailure(c, err)
		return
	}
	res, err := orch.Upload(ctx, subjectID)
	c.Set("uploadState", orch.State().String())
	if err != nil {
		writeFailure(c, err)
		return
	}
	c.Set("documentId", res.Document.ID)
	respond.Created(c, uploadResponse{
		Document:    documents.ToResponse(res.Document),
		DownloadURL: res.DownloadURL,
		State:       orch.State().String(),
	})
}

func isPDF(fh *multipart.FileHeader) (bool, error) {
	f, err := fh.Open()
	if err != nil {
		return false, err
	}
	defer f.Close()
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return false, err
	}
	return mt.Is(pdfMIME), nil
}

func writeFailure(c *gin.Context, err error) {
	if errors.Is(err, ErrPickCanceled) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Please select a PDF file", nil)
		return
	}
	if errors.Is(err, ErrUploadInFlight) {
		respond.Error(c, http.StatusConflict, "upload_in_progress", "Upload already in progress", nil)
		return
	}
	f := Classify(err)
	details := map[string]any{"category": string(f.Category), "code": f.Code}
	switch f.Category {
	case CategoryValidation:
		respond.Error(c, http.StatusBadRequest, "validation_error", f.Message, details)
	case CategoryNetwork:
		respond.Error(c, http.StatusBadGateway, "upload_failed", f.Message, details)
	default:
		respond.Error(c, http.StatusInternalServerError, "upload_failed", f.Message, details)
	}
}

func serveFile(store object.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if strings.HasPrefix(path.Base(key), ".upload-") {
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
			return
		}
		rc, err := store.Open(c.Request.Context(), key)
		if err != nil {
			var objErr *object.Error
			if errors.As(err, &objErr) && (objErr.Code == object.CodeNotFound || errors.Is(err, object.ErrInvalidKey)) {
				respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open file", nil)
			return
		}
		defer rc.Close()
		c.DataFromReader(http.StatusOK, -1, pdfMIME, rc, nil)
	}
}
