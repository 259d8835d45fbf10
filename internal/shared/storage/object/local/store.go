package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"studymate-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local object store rooted at baseDir. When publicBaseURL is set, URL returns
// links served by the API's /api/v1/files route; otherwise it returns file:// URLs.
func New(baseDir, publicBaseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// tempPrefix marks partially written objects. Keys naming them are rejected.
const tempPrefix = ".upload-"

// Put writes the reader to disk at the given key. The content type is not recorded; files are
// served as PDFs.
func (s *Store) Put(ctx context.Context, key string, _ string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &object.Error{Op: "put", Key: key, Code: object.CodeCanceled, Err: err}
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, s.fsError("put", key, fmt.Errorf("mkdir: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), tempPrefix+"*")
	if err != nil {
		return 0, s.fsError("put", key, fmt.Errorf("open file: %w", err))
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, &object.Error{Op: "put", Key: key, Code: object.CodeCanceled, Err: ctxErr}
		}
		return 0, s.fsError("put", key, fmt.Errorf("write body: %w", err))
	}
	// The object is either fully written or absent.
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return 0, s.fsError("put", key, fmt.Errorf("rename: %w", err))
	}
	return written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, s.fsError("open", key, err)
	}
	return f, nil
}

// URL returns the download URL for a stored object.
func (s *Store) URL(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(fullPath); err != nil {
		return "", s.fsError("url", key, err)
	}
	if s.baseURL != "" {
		return s.baseURL + "/api/v1/files/" + escapeKey(key), nil
	}
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return "", s.fsError("url", key, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) ||
		strings.HasPrefix(filepath.Base(clean), tempPrefix) {
		return "", &object.Error{Op: "resolve", Key: key, Code: object.CodeUnknown, Err: object.ErrInvalidKey}
	}
	return filepath.Join(s.baseDir, clean), nil
}

func (s *Store) fsError(op, key string, err error) error {
	code := object.CodeUnknown
	switch {
	case errors.Is(err, fs.ErrPermission):
		code = object.CodeUnauthorized
	case errors.Is(err, fs.ErrNotExist):
		code = object.CodeNotFound
	}
	return &object.Error{Op: op, Key: key, Code: code, Err: err}
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

var _ object.ObjectStore = (*Store)(nil)
