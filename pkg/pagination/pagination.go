package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page/limit inputs from controllers or services.
type Params struct {
	Limit int
	Page  int
}

// Links carries the navigation URLs the marketplace returns with a page.
type Links struct {
	Next string `json:"next"`
	Last string `json:"last"`
}

// Paging mirrors the paging block of marketplace list payloads.
type Paging struct {
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	TotalPage int   `json:"total_page"`
	TotalData int   `json:"total_data"`
	Links     Links `json:"links"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage floors the page number at one.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// HasMore reports whether another page exists after the current one. The
// marketplace signals the last page both by total_page and by the next link
// equaling the last link; either signal is honored.
func (p Paging) HasMore() bool {
	if p.TotalPage > 0 {
		return p.Page < p.TotalPage
	}
	return p.Links.Next != "" && p.Links.Next != p.Links.Last
}
