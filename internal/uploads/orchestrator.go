package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"studymate-backend/internal/appstate"
	"studymate-backend/internal/documents"
	"studymate-backend/internal/shared/metrics"
	"studymate-backend/internal/shared/storage/object"
	"studymate-backend/internal/shared/telemetry"
	"studymate-backend/internal/shared/util"
)

const keyPrefix = "docs/uploaded_pdf/"

// ErrUploadInFlight is returned when Pick or Upload is called while an attempt is running.
var ErrUploadInFlight = errors.New("upload already in progress")

// Summarizer triggers remote processing of an uploaded file.
type Summarizer interface {
	Summarize(ctx context.Context, fileURL string) (json.RawMessage, error)
}

// Config holds the collaborators of an Orchestrator.
type Config struct {
	Picker     Picker
	Opener     Opener
	Store      object.ObjectStore
	Summarizer Summarizer
	Docs       *appstate.DocsStore
	Now        func() time.Time
}

// Result is the outcome of a successful upload.
type Result struct {
	Document    documents.Document
	DownloadURL string
	Key         string
}

// Orchestrator runs one upload attempt at a time: store the picked PDF, ask the summarizer to
// process it, record the document and refresh the subject's document list.
type Orchestrator struct {
	cfg Config

	mu      sync.Mutex
	state   State
	asset   *Asset
	running bool
}

// New constructs an idle orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Opener == nil {
		cfg.Opener = FileOpener{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{cfg: cfg, state: StateIdle}
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Selected returns the held asset, if any.
func (o *Orchestrator) Selected() (Asset, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.asset == nil {
		return Asset{}, false
	}
	return *o.asset, true
}

// Pick asks the picker for a PDF. A canceled pick leaves the orchestrator idle with no file.
func (o *Orchestrator) Pick(ctx context.Context) (Asset, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return Asset{}, ErrUploadInFlight
	}
	o.mu.Unlock()

	asset, err := o.cfg.Picker.Pick(ctx)
	if errors.Is(err, ErrPickCanceled) {
		o.mu.Lock()
		if o.running {
			o.mu.Unlock()
			return Asset{}, ErrUploadInFlight
		}
		o.asset = nil
		o.state = StateIdle
		o.mu.Unlock()
		telemetry.Info("upload.pick.canceled", nil)
		return Asset{}, err
	}
	if err != nil {
		telemetry.Warn("upload.pick.failed", map[string]any{"err": err.Error()})
		return Asset{}, &Failure{
			Category: CategoryValidation,
			Message:  fmt.Sprintf("Failed to pick document: %s", err.Error()),
			Code:     "validation",
			Err:      err,
		}
	}

	// An upload may have started while the picker was open.
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return Asset{}, ErrUploadInFlight
	}
	o.asset = &asset
	o.state = StateFilePicked
	o.mu.Unlock()
	telemetry.Info("upload.step", map[string]any{
		"state": StateFilePicked.String(),
		"name":  asset.Name,
		"size":  asset.Size,
	})
	return asset, nil
}

// Upload runs the pipeline for the held asset against subjectID. Validation failures leave the
// state untouched; other failures move to StateFailed and keep the asset for a retry.
func (o *Orchestrator) Upload(ctx context.Context, subjectID string) (Result, error) {
	subjectID = strings.TrimSpace(subjectID)

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return Result{}, ErrUploadInFlight
	}
	if o.asset == nil {
		o.mu.Unlock()
		return Result{}, validationFailure("Please select a PDF file")
	}
	if subjectID == "" {
		o.mu.Unlock()
		return Result{}, validationFailure("Please select a subject first")
	}
	asset := *o.asset
	name, err := util.SanitizeFileName(asset.Name)
	if err != nil {
		o.mu.Unlock()
		return Result{}, validationFailure("Invalid file name")
	}
	o.running = true
	o.mu.Unlock()

	start := o.cfg.Now()
	metrics.IncUploadStarted()

	res, err := o.run(ctx, asset, name, subjectID)
	metrics.ObserveUploadDuration(o.cfg.Now().Sub(start))
	if err != nil {
		f := Classify(err)
		o.finish(StateFailed, false)
		metrics.IncUploadFailed(string(f.Category))
		fields := map[string]any{
			"subject_id": subjectID,
			"name":       asset.Name,
			"category":   string(f.Category),
			"code":       f.Code,
		}
		if f.Err != nil {
			fields["err"] = f.Err.Error()
		}
		telemetry.Error("upload.failed", fields)
		return Result{}, f
	}

	o.finish(StateComplete, true)
	metrics.IncUploadCompleted()
	telemetry.Info("upload.complete", map[string]any{
		"subject_id":  subjectID,
		"document_id": res.Document.ID,
		"key":         res.Key,
	})
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, asset Asset, name, subjectID string) (Result, error) {
	key := fmt.Sprintf("%s%d_%s", keyPrefix, o.cfg.Now().UnixMilli(), name)

	o.step(StateUploading, subjectID, key)
	rc, err := o.cfg.Opener.Open(ctx, asset)
	if err != nil {
		return Result{}, err
	}
	written, err := o.cfg.Store.Put(ctx, key, pdfMIME, rc)
	rc.Close()
	if err != nil {
		return Result{}, err
	}
	downloadURL, err := o.cfg.Store.URL(ctx, key)
	if err != nil {
		return Result{}, err
	}

	// The stored object is not removed if a later step fails.
	o.step(StateRemoteProcessing, subjectID, key)
	if _, err := o.cfg.Summarizer.Summarize(ctx, downloadURL); err != nil {
		return Result{}, err
	}

	o.step(StatePersisting, subjectID, key)
	size := asset.Size
	if size <= 0 {
		size = written
	}
	doc, _, err := o.cfg.Docs.CreateDoc(ctx, asset.Name, downloadURL, FormatSize(size), 0, subjectID)
	if err != nil {
		return Result{}, err
	}
	if _, err := o.cfg.Docs.LoadDocsBySubject(ctx, subjectID); err != nil {
		return Result{}, err
	}
	return Result{Document: doc, DownloadURL: downloadURL, Key: key}, nil
}

func (o *Orchestrator) step(s State, subjectID, key string) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	telemetry.Info("upload.step", map[string]any{
		"state":      s.String(),
		"subject_id": subjectID,
		"key":        key,
	})
}

func (o *Orchestrator) finish(s State, clearAsset bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
	o.running = false
	if clearAsset {
		o.asset = nil
	}
}
