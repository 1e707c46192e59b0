package pagination

const (
	// DefaultPage is the first page when none is requested.
	DefaultPage = 1
	// DefaultLimit is the catalog page size when a limit is not provided.
	DefaultLimit = 12
	// DefaultOrdersLimit is the order history page size.
	DefaultOrdersLimit = 10
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies defaults and bounds to the params.
func (p Params) Normalize(defaultLimit int) Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	p.Limit = NormalizeLimit(p.Limit, defaultLimit)
	return p
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit, defaultLimit int) int {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if limit <= 0 {
		return defaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page describes the position of a result page within the full result set.
type Page struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPage computes page metadata for total rows under the given params.
func NewPage(p Params, total int64) Page {
	totalPages := 0
	if p.Limit > 0 && total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Page{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		Total:       total,
		PerPage:     p.Limit,
		HasNext:     p.Page < totalPages,
		HasPrev:     p.Page > 1,
	}
}
