package subjects

import "time"

// SubjectResponse is the outward-facing representation of a subject.
type SubjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PDFURLs   []string  `json:"pdfUrls"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(s Subject) SubjectResponse {
	urls := s.PDFURLs
	if urls == nil {
		urls = []string{}
	}
	return SubjectResponse{
		ID:        s.ID,
		Name:      s.Name,
		PDFURLs:   urls,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

type urlRequest struct {
	URL string `json:"url"`
}
