package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const pdfMIME = "application/pdf"

var (
	// ErrPickCanceled is returned by a Picker when the user dismissed the picker.
	ErrPickCanceled = errors.New("document pick canceled")
	// ErrNotPDF is returned when the picked file is not a PDF.
	ErrNotPDF = errors.New("selected file is not a PDF")
)

// Asset describes a picked file. URI is a local path or file:// URI unless an Opener says otherwise.
type Asset struct {
	Name     string
	Size     int64
	URI      string
	MimeType string
}

// Picker selects one PDF asset.
type Picker interface {
	Pick(ctx context.Context) (Asset, error)
}

// Opener returns the bytes of a picked asset.
type Opener interface {
	Open(ctx context.Context, a Asset) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, a Asset) (io.ReadCloser, error)

func (f OpenerFunc) Open(ctx context.Context, a Asset) (io.ReadCloser, error) { return f(ctx, a) }

// FilePicker picks a file from the local filesystem. An empty Path means nothing was chosen.
type FilePicker struct {
	Path string
}

func (p FilePicker) Pick(ctx context.Context) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	if strings.TrimSpace(p.Path) == "" {
		return Asset{}, ErrPickCanceled
	}
	info, err := os.Stat(p.Path)
	if err != nil {
		return Asset{}, err
	}
	if info.IsDir() {
		return Asset{}, fmt.Errorf("%s is a directory", p.Path)
	}
	mt, err := mimetype.DetectFile(p.Path)
	if err != nil {
		return Asset{}, err
	}
	if !mt.Is(pdfMIME) {
		return Asset{}, fmt.Errorf("%w: detected %s", ErrNotPDF, mt.String())
	}
	abs, err := filepath.Abs(p.Path)
	if err != nil {
		return Asset{}, err
	}
	return Asset{
		Name:     filepath.Base(p.Path),
		Size:     info.Size(),
		URI:      abs,
		MimeType: pdfMIME,
	}, nil
}

// StaticPicker hands out an asset that was already received, e.g. from a multipart form.
type StaticPicker struct {
	Asset Asset
}

func (p StaticPicker) Pick(ctx context.Context) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	if p.Asset.Name == "" {
		return Asset{}, ErrPickCanceled
	}
	return p.Asset, nil
}

// FileOpener reads assets whose URI is a local path or a file:// URI.
type FileOpener struct{}

func (FileOpener) Open(ctx context.Context, a Asset) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := a.URI
	if strings.HasPrefix(p, "file://") {
		u, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("parse asset uri: %w", err)
		}
		p = filepath.FromSlash(u.Path)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	return f, nil
}
