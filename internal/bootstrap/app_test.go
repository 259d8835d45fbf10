package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"studymate-backend/internal/shared/config"
	"studymate-backend/internal/shared/telemetry"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))
	gin.SetMode(gin.TestMode)

	summarizer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/summarize" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"summary":"done"}`))
	}))
	t.Cleanup(summarizer.Close)

	app, err := Build(context.Background(), config.Config{
		Env:               "test",
		ObjectStoreType:   "local",
		LocalStoreDir:     t.TempDir(),
		PublicBaseURL:     "http://localhost:8080",
		SummarizerBaseURL: summarizer.URL,
		UploadsPerMinute:  60,
	}, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func do(t *testing.T, h http.Handler, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestBuildServesHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	if app.DB != nil {
		t.Fatalf("expected in-memory repositories without DATABASE_URL")
	}

	resp := do(t, app.Router, http.MethodGet, "/api/v1/health", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"database":"memory"`) {
		t.Fatalf("expected healthy memory status, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = do(t, app.Router, http.MethodGet, "/api/v1/metrics", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "studymate_http_requests_total") {
		t.Fatalf("expected prometheus output, got %d", resp.Code)
	}
}

func TestSubjectUploadFlow(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app.Router, http.MethodPost, "/api/v1/subjects", "application/json", strings.NewReader(`{"name":"Biology"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var subject struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&subject); err != nil {
		t.Fatalf("decode subject: %v", err)
	}

	resp = do(t, app.Router, http.MethodPost, "/api/v1/subjects", "application/json", strings.NewReader(`{"name":"biology"}`))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", resp.Code)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "cells.pdf")
	_, _ = io.WriteString(part, "%PDF-1.5\n%%EOF\n")
	_ = mw.Close()
	resp = do(t, app.Router, http.MethodPost, "/api/v1/subjects/"+subject.ID+"/uploads", mw.FormDataContentType(), &buf)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 upload, got %d: %s", resp.Code, resp.Body.String())
	}
	var uploaded struct {
		Document struct {
			ID string `json:"id"`
		} `json:"document"`
		DownloadURL string `json:"downloadUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if !strings.HasPrefix(uploaded.DownloadURL, "http://localhost:8080/api/v1/files/docs/uploaded_pdf/") {
		t.Fatalf("unexpected download url %s", uploaded.DownloadURL)
	}

	resp = do(t, app.Router, http.MethodGet, "/api/v1/documents?subjectId="+subject.ID, "", nil)
	var docs []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		t.Fatalf("decode docs: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	resp = do(t, app.Router, http.MethodGet, "/api/v1/documents/"+uploaded.Document.ID+"/content/mind-map", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Visual concept map") {
		t.Fatalf("expected content view, got %d: %s", resp.Code, resp.Body.String())
	}
}
