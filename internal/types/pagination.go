package types

// PageRequest describes the client's pagination and sorting choices.
// PageNumber is 0-based, matching the query surface of the API.
type PageRequest struct {
	PageNumber int
	Size       int
	SortField  string
	SortDesc   bool
}

// Offset returns the row offset for the requested page.
func (p PageRequest) Offset() int {
	return p.PageNumber * p.Size
}

// Page is a single page of results plus totals.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a Page from a slice and the total row count.
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		PageNumber:    req.PageNumber,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
