package object

import (
	"context"
	"errors"
	"io"
)

// ObjectStore defines the contract for saving binary objects and handing out download URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	URL(ctx context.Context, key string) (string, error)
}

// Error codes shared by the store implementations.
const (
	CodeUnauthorized  = "unauthorized"
	CodeNotConfigured = "not_configured"
	CodeCanceled      = "canceled"
	CodeNotFound      = "not_found"
	CodeUnknown       = "unknown"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Error is a store failure tagged with a stable code for callers that classify failures.
type Error struct {
	Op     string
	Key    string
	Code   string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := "object " + e.Op + " key=" + e.Key + " code=" + e.Code
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }
