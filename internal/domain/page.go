package domain

// PaginationParams carries page/limit values for the notification list
// endpoint. Page is 1-indexed. Limit is capped at 50 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
	// UnreadOnly restricts the listing to unread notifications.
	UnreadOnly bool
}

// NewPaginationParams builds a PaginationParams from optional values.
// Non-positive inputs fall back to sane defaults (page=1, limit=10).
// The limit is capped at 50 to keep responses small.
func NewPaginationParams(page, limit int, unreadOnly bool) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 10, UnreadOnly: unreadOnly}
	if page >= 1 {
		p.Page = page
	}
	if limit >= 1 {
		p.Limit = limit
		if p.Limit > 50 {
			p.Limit = 50
		}
	}
	return p
}
