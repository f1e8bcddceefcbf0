// Package paging holds the view-state for paginated list pages: the cursor a
// request asks for and the totals the backend reports back.
package paging

import (
	"net/url"
	"slices"
	"strconv"
)

// Options describes the page sizes a list page offers.
type Options struct {
	Sizes       []int
	DefaultSize int
}

// Cursor is the requested page and page size. Page is always >= 1.
type Cursor struct {
	Page     int
	PageSize int
}

// Info is the pagination block reported by the backend.
type Info struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// View is what templates use to draw prev/next and the page-size selector.
type View struct {
	Cursor
	TotalPages int
	TotalItems int
	HasPrev    bool
	HasNext    bool
	Sizes      []int
	// Known is false when the backend sent no usable pagination block.
	Known bool
}

// Parse reads page and limit from a query string, falling back to page 1 and
// the default size for anything missing or out of range.
func (o Options) Parse(q url.Values) Cursor {
	c := Cursor{Page: 1, PageSize: o.defaultSize()}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p >= 1 {
		c.Page = p
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && o.Offers(n) {
		c.PageSize = n
	}
	return c
}

// Offers reports whether n is one of the configured page sizes.
func (o Options) Offers(n int) bool {
	return slices.Contains(o.Sizes, n)
}

func (o Options) defaultSize() int {
	if o.Offers(o.DefaultSize) {
		return o.DefaultSize
	}
	if len(o.Sizes) > 0 {
		return o.Sizes[0]
	}
	return 10
}

// WithPageSize switches to a new page size and starts over at page 1.
func (c Cursor) WithPageSize(n int) Cursor {
	return Cursor{Page: 1, PageSize: n}
}

// Next returns the cursor for the following page.
func (c Cursor) Next() Cursor {
	return Cursor{Page: c.Page + 1, PageSize: c.PageSize}
}

// Prev returns the cursor for the previous page, never below 1.
func (c Cursor) Prev() Cursor {
	if c.Page <= 1 {
		return c
	}
	return Cursor{Page: c.Page - 1, PageSize: c.PageSize}
}

// Query encodes the cursor as page/limit query parameters.
func (c Cursor) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(c.Page))
	q.Set("limit", strconv.Itoa(c.PageSize))
	return q
}

// Valid reports whether the backend block is usable for drawing controls.
func (i *Info) Valid() bool {
	return i != nil && i.TotalPages >= 0 && i.TotalItems >= 0 && i.CurrentPage >= 0
}

// NewView combines the requested cursor with what the backend reported.
// A nil or invalid info yields a view with both controls disabled.
func NewView(c Cursor, info *Info, sizes []int) View {
	v := View{Cursor: c, Sizes: sizes}
	if !info.Valid() {
		v.HasPrev = c.Page > 1
		return v
	}
	v.Known = true
	v.TotalItems = info.TotalItems
	v.TotalPages = max(info.TotalPages, 1)
	if info.CurrentPage >= 1 {
		v.Page = info.CurrentPage
	}
	v.HasPrev = v.Page > 1
	v.HasNext = v.Page < v.TotalPages
	return v
}

// PrevQuery is the query string of the preceding page.
func (v View) PrevQuery() string { return v.Cursor.Prev().Query().Encode() }

// NextQuery is the query string of the following page.
func (v View) NextQuery() string { return v.Cursor.Next().Query().Encode() }

// SizeQuery is the link for switching to page size n.
func (v View) SizeQuery(n int) string { return v.Cursor.WithPageSize(n).Query().Encode() }
