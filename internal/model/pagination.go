package model

// Default pagination values
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageParams represents validated pagination parameters
type PageParams struct {
	Page  int `json:"page"`  // Current page number (1-based)
	Limit int `json:"limit"` // Number of items per page
}

// Pagination contains pagination metadata for responses
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Offset returns the SQL OFFSET value based on page and limit
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta creates pagination metadata for a result set of total records.
// An empty set has zero pages.
func (p PageParams) Meta(total int) Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page*p.Limit < total,
		HasPrev:    p.Page > 1,
	}
}
