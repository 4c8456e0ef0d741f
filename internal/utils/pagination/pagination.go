package pagination

import (
	"errors"
	"math"
)

// Default values.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage is the largest page whose offset fits in an int.
	MaxPage = math.MaxInt/MaxPageSize + 1
)

// ErrPageOutOfRange is returned by Validate for pages beyond MaxPage.
var ErrPageOutOfRange = errors.New("page out of range")

// ClampPageSize returns size bounded to [1, MaxPageSize], substituting
// DefaultPageSize for non-positive values.
func ClampPageSize(size int) int {
	return Bound(size, DefaultPageSize, MaxPageSize)
}

// Bound returns size bounded to [1, upper], substituting def for
// non-positive values.
func Bound(size, def, upper int) int {
	if size < 1 {
		size = def
	}
	if size > upper {
		return upper
	}
	return size
}

// CursorRequest holds keyset pagination query parameters.
type CursorRequest struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"`
}

// Pagination holds offset pagination parameters. Only admin listings that
// need a total count use it; user-facing listings are keyset paginated.
type Pagination struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// New creates offset pagination with default values.
func New() *Pagination {
	return &Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// Validate rejects pages whose offset would overflow.
func (p *Pagination) Validate() error {
	if p.Page > MaxPage {
		return ErrPageOutOfRange
	}
	return nil
}

// Offset returns the row offset for the current page. Pages are clamped to
// [DefaultPage, MaxPage].
func (p *Pagination) Offset() int {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the bounded page size.
func (p *Pagination) Limit() int {
	return ClampPageSize(p.PageSize)
}
