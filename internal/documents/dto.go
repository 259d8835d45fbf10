package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       string    `json:"size"`
	Pages      int       `json:"pages"`
	UploadedAt string    `json:"uploadedAt"`
	SubjectID  string    `json:"subjectId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToResponse converts a Document for JSON output.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		URL:        doc.URL,
		Size:       doc.Size,
		Pages:      doc.Pages,
		UploadedAt: doc.UploadedAt,
		SubjectID:  doc.SubjectID,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

type createRequest struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Size      string `json:"size"`
	Pages     int    `json:"pages"`
	SubjectID string `json:"subjectId"`
}

type renameRequest struct {
	Name string `json:"name"`
}
