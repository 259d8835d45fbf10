package subjects

import "time"

// Subject groups uploaded documents, e.g. a course.
type Subject struct {
	ID        string
	Name      string
	PDFURLs   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no slices with s.
func (s Subject) Clone() Subject {
	out := s
	out.PDFURLs = append([]string{}, s.PDFURLs...)
	return out
}
