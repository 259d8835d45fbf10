package documents

import "errors"

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrOperationFailed = errors.New("document operation failed")
)

// OpError is the normalized error returned when the backing store fails.
// The cause is logged, not wrapped.
// Missing reports that the row the operation targeted does not exist.
type OpError struct {
	Op      string
	Missing bool
}

func (e *OpError) Error() string {
	return "failed to " + e.Op
}

func (e *OpError) Is(target error) bool {
	return target == ErrOperationFailed
}
