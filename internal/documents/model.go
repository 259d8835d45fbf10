package documents

import "time"

// UploadedAtLayout is the display timestamp format stored in UploadedAt.
const UploadedAtLayout = "2006-01-02T15:04:05.000Z"

// Document is the metadata record for one uploaded PDF.
type Document struct {
	ID         string
	Name       string
	URL        string
	Size       string
	Pages      int
	UploadedAt string
	SubjectID  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
