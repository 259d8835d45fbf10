package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studymate-backend/internal/appstate"
	"studymate-backend/internal/documents"
	"studymate-backend/internal/shared/storage/object/local"
	"studymate-backend/internal/shared/telemetry"
	"studymate-backend/internal/summarize"
)

const pdfBody = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

type fixture struct {
	orch      *Orchestrator
	store     *local.Store
	docs      *appstate.DocsStore
	svc       *documents.Service
	requests  chan string
	now       time.Time
	summarize *httptest.Server
}

func bytesOpener(body string) Opener {
	return OpenerFunc(func(ctx context.Context, _ Asset) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	})
}

func newFixture(t *testing.T, picker Picker, status int) *fixture {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))

	f := &fixture{
		requests: make(chan string, 4),
		now:      time.Date(2026, time.May, 4, 10, 30, 0, 0, time.UTC),
	}
	f.summarize = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FilePath string `json:"file_path"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.requests <- body.FilePath
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"summary":"ok"}`))
	}))
	t.Cleanup(f.summarize.Close)

	f.store = local.New(t.TempDir(), "http://api.test")
	f.svc = documents.NewService(documents.NewMemoryRepo())
	f.docs = appstate.NewDocsStore(f.svc)
	f.orch = New(Config{
		Picker:     picker,
		Opener:     bytesOpener(pdfBody),
		Store:      f.store,
		Summarizer: summarize.NewClient(f.summarize.URL, 5*time.Second),
		Docs:       f.docs,
		Now:        func() time.Time { return f.now },
	})
	return f
}

func notesPicker() Picker {
	return StaticPicker{Asset: Asset{Name: "notes.pdf", Size: 2621440, URI: "memory:notes.pdf", MimeType: pdfMIME}}
}

func TestPickCanceledReturnsToIdle(t *testing.T) {
	f := newFixture(t, StaticPicker{}, http.StatusOK)

	if _, err := f.orch.Pick(context.Background()); !errors.Is(err, ErrPickCanceled) {
		t.Fatalf("expected ErrPickCanceled, got %v", err)
	}
	if f.orch.State() != StateIdle {
		t.Fatalf("expected idle, got %s", f.orch.State())
	}
	if _, ok := f.orch.Selected(); ok {
		t.Fatalf("expected no file held")
	}
}

func TestPickThenCancelDropsHeldFile(t *testing.T) {
	f := newFixture(t, notesPicker(), http.StatusOK)
	if _, err := f.orch.Pick(context.Background()); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if f.orch.State() != StateFilePicked {
		t.Fatalf("expected file picked, got %s", f.orch.State())
	}

	f.orch.cfg.Picker = StaticPicker{}
	if _, err := f.orch.Pick(context.Background()); !errors.Is(err, ErrPickCanceled) {
		t.Fatalf("expected ErrPickCanceled, got %v", err)
	}
	if _, ok := f.orch.Selected(); ok || f.orch.State() != StateIdle {
		t.Fatalf("expected idle with no file, got %s", f.orch.State())
	}
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t, notesPicker(), http.StatusOK)
	ctx := context.Background()

	_, err := f.orch.Upload(ctx, "subject-1")
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != CategoryValidation {
		t.Fatalf("expected validation failure without a file, got %v", err)
	}
	if f.orch.State() != StateIdle {
		t.Fatalf("expected idle, got %s", f.orch.State())
	}

	if _, err := f.orch.Pick(ctx); err != nil {
		t.Fatalf("pick: %v", err)
	}
	_, err = f.orch.Upload(ctx, "  ")
	if !errors.As(err, &failure) || failure.Message != "Please select a subject first" {
		t.Fatalf("expected subject validation failure, got %v", err)
	}
	if f.orch.State() != StateFilePicked {
		t.Fatalf("expected file still picked, got %s", f.orch.State())
	}
	if len(f.requests) != 0 {
		t.Fatalf("expected no summarizer calls")
	}
}

func TestUploadPersistsDocument(t *testing.T) {
	f := newFixture(t, notesPicker(), http.StatusOK)
	ctx := context.Background()

	if _, err := f.orch.Pick(ctx); err != nil {
		t.Fatalf("pick: %v", err)
	}
	before := time.Now().UTC().Truncate(time.Millisecond)
	res, err := f.orch.Upload(ctx, "subject-1")
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	wantKey := "docs/uploaded_pdf/1777890600000_notes.pdf"
	if res.Key != wantKey {
		t.Fatalf("expected key %s, got %s", wantKey, res.Key)
	}
	if res.DownloadURL != "http://api.test/api/v1/files/"+wantKey {
		t.Fatalf("unexpected download url %s", res.DownloadURL)
	}
	if got := <-f.requests; got != res.DownloadURL {
		t.Fatalf("expected summarizer to receive %s, got %s", res.DownloadURL, got)
	}

	doc := res.Document
	if doc.Pages != 0 || doc.Size != "2.5 MB" || doc.Name != "notes.pdf" || doc.SubjectID != "subject-1" {
		t.Fatalf("unexpected document %+v", doc)
	}
	uploaded, err := time.Parse(documents.UploadedAtLayout, doc.UploadedAt)
	if err != nil {
		t.Fatalf("parse uploadedAt: %v", err)
	}
	if uploaded.Before(before) || uploaded.After(after) {
		t.Fatalf("uploadedAt %s outside [%s, %s]", uploaded, before, after)
	}

	st := f.docs.State()
	if len(st.Docs) != 1 || st.Docs[0].ID != doc.ID {
		t.Fatalf("expected subject list to hold the new document, got %+v", st.Docs)
	}
	if f.orch.State() != StateComplete {
		t.Fatalf("expected complete, got %s", f.orch.State())
	}
	if _, ok := f.orch.Selected(); ok {
		t.Fatalf("expected held file cleared after success")
	}

	rc, err := f.store.Open(ctx, wantKey)
	if err != nil {
		t.Fatalf("open stored object: %v", err)
	}
	defer rc.Close()
	stored, _ := io.ReadAll(rc)
	if !bytes.Equal(stored, []byte(pdfBody)) {
		t.Fatalf("stored bytes differ")
	}
}

func TestSummarizerFailureKeepsBlobAndSkipsDocument(t *testing.T) {
	f := newFixture(t, notesPicker(), http.StatusInternalServerError)
	ctx := context.Background()

	if _, err := f.orch.Pick(ctx); err != nil {
		t.Fatalf("pick: %v", err)
	}
	_, err := f.orch.Upload(ctx, "subject-1")
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Category != CategoryNetwork || failure.Message != "API call failed with status 500" {
		t.Fatalf("unexpected failure %+v", failure)
	}
	if f.orch.State() != StateFailed {
		t.Fatalf("expected failed, got %s", f.orch.State())
	}
	if _, ok := f.orch.Selected(); !ok {
		t.Fatalf("expected file kept for retry")
	}

	if _, err := f.store.Open(ctx, "docs/uploaded_pdf/1777890600000_notes.pdf"); err != nil {
		t.Fatalf("expected orphaned blob to remain: %v", err)
	}
	docs, err := f.svc.ListAll(ctx)
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected no documents, got %v %v", docs, err)
	}
	if len(f.docs.State().Docs) != 0 {
		t.Fatalf("expected store untouched, got %+v", f.docs.State().Docs)
	}
}

type blockingSummarizer struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSummarizer) Summarize(ctx context.Context, fileURL string) (json.RawMessage, error) {
	close(b.entered)
	<-b.release
	return json.RawMessage(`{}`), nil
}

func TestConcurrentUploadIsRejected(t *testing.T) {
	f := newFixture(t, notesPicker(), http.StatusOK)
	blocker := &blockingSummarizer{entered: make(chan struct{}), release: make(chan struct{})}
	f.orch.cfg.Summarizer = blocker
	ctx := context.Background()

	if _, err := f.orch.Pick(ctx); err != nil {
		t.Fatalf("pick: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Upload(ctx, "subject-1")
		done <- err
	}()

	<-blocker.entered
	if f.orch.State() != StateRemoteProcessing {
		t.Fatalf("expected remote processing, got %s", f.orch.State())
	}
	if _, err := f.orch.Upload(ctx, "subject-1"); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("expected ErrUploadInFlight, got %v", err)
	}
	if _, err := f.orch.Pick(ctx); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("expected pick to be rejected, got %v", err)
	}

	close(blocker.release)
	if err := <-done; err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if f.orch.State() != StateComplete {
		t.Fatalf("expected complete, got %s", f.orch.State())
	}
}

func TestUploadKeepsDotsInsideFileName(t *testing.T) {
	picker := StaticPicker{Asset: Asset{Name: "chapter1..final.pdf", Size: 1024, URI: "memory:chapter1..final.pdf", MimeType: pdfMIME}}
	f := newFixture(t, picker, http.StatusOK)
	ctx := context.Background()

	if _, err := f.orch.Pick(ctx); err != nil {
		t.Fatalf("pick: %v", err)
	}
	res, err := f.orch.Upload(ctx, "subject-1")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Key != "docs/uploaded_pdf/1777890600000_chapter1..final.pdf" {
		t.Fatalf("unexpected key %q", res.Key)
	}
	if res.Document.Name != "chapter1..final.pdf" {
		t.Fatalf("unexpected document name %q", res.Document.Name)
	}
	if f.orch.State() != StateComplete {
		t.Fatalf("expected complete, got %s", f.orch.State())
	}
}

func TestUploadRejectsDotOnlyNameWithoutStarting(t *testing.T) {
	picker := StaticPicker{Asset: Asset{Name: "..", Size: 1024, URI: "memory:..", MimeType: pdfMIME}}
	f := newFixture(t, picker, http.StatusOK)
	ctx := context.Background()

	if _, err := f.orch.Pick(ctx); err != nil {
		t.Fatalf("pick: %v", err)
	}
	_, err := f.orch.Upload(ctx, "subject-1")
	var failure *Failure
	if !errors.As(err, &failure) || failure.Category != CategoryValidation || failure.Message != "Invalid file name" {
		t.Fatalf("expected invalid file name failure, got %v", err)
	}
	if f.orch.State() != StateFilePicked {
		t.Fatalf("expected file still picked, got %s", f.orch.State())
	}
	if len(f.requests) != 0 {
		t.Fatalf("expected no summarizer calls")
	}
}

type gatedPicker struct {
	asset   Asset
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPicker) Pick(ctx context.Context) (Asset, error) {
	close(p.entered)
	<-p.release
	return p.asset, nil
}

func TestPickDoesNotReplaceFileOfUploadStartedMeanwhile(t *testing.T) {
	f := newFixture(t, notesPicker(), http.StatusOK)
	blocker := &blockingSummarizer{entered: make(chan struct{}), release: make(chan struct{})}
	f.orch.cfg.Summarizer = blocker
	ctx := context.Background()

	if _, err := f.orch.Pick(ctx); err != nil {
		t.Fatalf("pick: %v", err)
	}

	gate := &gatedPicker{
		asset:   Asset{Name: "other.pdf", Size: 10, URI: "memory:other.pdf", MimeType: pdfMIME},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f.orch.cfg.Picker = gate
	picked := make(chan error, 1)
	go func() {
		_, err := f.orch.Pick(ctx)
		picked <- err
	}()
	<-gate.entered

	uploaded := make(chan error, 1)
	go func() {
		_, err := f.orch.Upload(ctx, "subject-1")
		uploaded <- err
	}()
	<-blocker.entered

	close(gate.release)
	if err := <-picked; !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("expected ErrUploadInFlight, got %v", err)
	}
	if held, ok := f.orch.Selected(); !ok || held.Name != "notes.pdf" {
		t.Fatalf("expected notes.pdf still held, got %+v", held)
	}

	close(blocker.release)
	if err := <-uploaded; err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.orch.State() != StateComplete {
		t.Fatalf("expected complete, got %s", f.orch.State())
	}
}
