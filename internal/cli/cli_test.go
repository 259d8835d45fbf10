package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studymate-backend/internal/bootstrap"
	"studymate-backend/internal/shared/config"
	"studymate-backend/internal/shared/telemetry"
	"studymate-backend/internal/uploads"
)

func setupTestApp(t *testing.T, summarizerStatus int) *bootstrap.App {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(summarizerStatus)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	a, err := bootstrap.Build(context.Background(), config.Config{
		Env:               "test",
		ObjectStoreType:   "local",
		LocalStoreDir:     t.TempDir(),
		SummarizerBaseURL: srv.URL,
	}, bootstrap.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	prev := newApp
	newApp = func(context.Context) (*bootstrap.App, error) { return a, nil }
	t.Cleanup(func() {
		newApp = prev
		closeApp()
		docsSubjectID, docsContent, uploadSubjectID = "", "", ""
	})
	return a
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "studymate version dev") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRootHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"subjects", "docs", "upload", "version"} {
		if !names[want] {
			t.Fatalf("missing %s command", want)
		}
	}
}

func TestSubjectsCreateRejectsDuplicate(t *testing.T) {
	setupTestApp(t, http.StatusOK)

	if _, err := run(t, "subjects", "create", "Organic", "Chemistry"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := run(t, "subjects", "create", "organic", "chemistry")
	if err == nil || err.Error() != "Subject with this name already exists" {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	out, err := run(t, "subjects", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Organic Chemistry") || !strings.Contains(out, "Total: 1 subjects") {
		t.Fatalf("unexpected list output %q", out)
	}
}

func TestSubjectsRenameRequiresTwoArgs(t *testing.T) {
	_, err := run(t, "subjects", "rename", "only-id")
	if err == nil || !strings.Contains(err.Error(), "requires at least 2 arg(s)") {
		t.Fatalf("expected arg error, got %v", err)
	}
}

func TestUploadThenListAndView(t *testing.T) {
	a := setupTestApp(t, http.StatusOK)
	sub, err := a.SubjectsService.Create(context.Background(), "Physics")
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}

	out, err := run(t, "upload", "--subject", sub.ID, writePDF(t, "waves.pdf"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out, "Upload Complete!") || !strings.Contains(out, "file://") {
		t.Fatalf("unexpected upload output %q", out)
	}

	out, err = run(t, "docs", "list", "--subject", sub.ID)
	if err != nil {
		t.Fatalf("docs list: %v", err)
	}
	if !strings.Contains(out, "waves.pdf") || !strings.Contains(out, "Total: 1 documents") {
		t.Fatalf("unexpected docs output %q", out)
	}

	docs, _ := a.DocumentsService.ListBySubject(context.Background(), sub.ID)
	out, err = run(t, "docs", "view", docs[0].ID, "--content", "flash-cards")
	if err != nil {
		t.Fatalf("docs view: %v", err)
	}
	if !strings.Contains(out, "Flash Cards") || !strings.Contains(out, "Quick revision cards") {
		t.Fatalf("unexpected view output %q", out)
	}
}

func TestUploadWithoutSubjectIsValidationFailure(t *testing.T) {
	setupTestApp(t, http.StatusOK)

	_, err := run(t, "upload", writePDF(t, "a.pdf"))
	var f *uploads.Failure
	if !errors.As(err, &f) || f.Category != uploads.CategoryValidation {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if f.Message != "Please select a subject first" {
		t.Fatalf("unexpected message %q", f.Message)
	}
}

func TestUploadSummarizerFailure(t *testing.T) {
	a := setupTestApp(t, http.StatusBadGateway)

	_, err := run(t, "upload", "--subject", "sub-1", writePDF(t, "a.pdf"))
	if err == nil || !strings.Contains(err.Error(), "API call failed with status 502") {
		t.Fatalf("expected summarizer failure, got %v", err)
	}
	docs, _ := a.DocumentsService.ListAll(context.Background())
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestDocsViewRejectsUnknownContent(t *testing.T) {
	setupTestApp(t, http.StatusOK)
	_, err := run(t, "docs", "view", "doc-1", "--content", "quiz")
	if err == nil || !strings.Contains(err.Error(), "unknown content type") {
		t.Fatalf("expected content error, got %v", err)
	}
}
