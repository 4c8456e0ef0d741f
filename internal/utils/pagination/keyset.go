package pagination

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/agora/server/internal/utils/cursor"
)

// Direction is the sort direction of a keyset ordered listing.
type Direction int

const (
	// Descending lists newest first.
	Descending Direction = iota
	// Ascending lists oldest first.
	Ascending
)

// String returns the SQL keyword for d.
func (d Direction) String() string {
	if d == Ascending {
		return "ASC"
	}
	return "DESC"
}

// Follows reports whether item sorts strictly after pos in direction d,
// comparing (timestamp, id) as a pair.
func (d Direction) Follows(item, pos cursor.Cursor) bool {
	cmp := cursor.Compare(item, pos)
	if d == Ascending {
		return cmp > 0
	}
	return cmp < 0
}

// Less reports whether a sorts before b in direction d.
func (d Direction) Less(a, b cursor.Cursor) bool {
	return d.Follows(b, a)
}

// CursorPage is one page of a keyset paginated listing.
// HasMore is false exactly when NextCursor is nil.
type CursorPage[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

// FetchFunc loads up to limit items sorting strictly after the position
// (nil for the first page), in listing order.
type FetchFunc[T any] func(ctx context.Context, after *cursor.Cursor, limit int) ([]T, error)

// KeyFunc returns the keyset position of an item.
type KeyFunc[T any] func(item T) cursor.Cursor

// Resolve turns a client supplied token into a resume position. Tokens that
// fail to decode, and zero positions, resolve to nil: the first page.
func Resolve(token string) *cursor.Cursor {
	c, ok := cursor.TryDecode(token)
	if !ok || c.IsZero() {
		return nil
	}
	return &c
}

// Paginate fetches one page after the given position. It asks fetch for one
// row beyond pageSize to learn whether another page exists. Callers bound
// pageSize from above; non-positive sizes fall back to DefaultPageSize.
func Paginate[T any](ctx context.Context, after *cursor.Cursor, pageSize int, fetch FetchFunc[T], key KeyFunc[T]) (*CursorPage[T], error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	items, err := fetch(ctx, after, pageSize+1)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	page := &CursorPage[T]{}
	if len(items) > pageSize {
		items = items[:pageSize]
		next, err := cursor.Marshal(key(items[len(items)-1]))
		if err != nil {
			return nil, err
		}
		page.NextCursor = &next
		page.HasMore = true
	}

	if items == nil {
		items = make([]T, 0)
	}
	page.Items = items

	return page, nil
}

// Columns names the ordering columns of a keyset listing.
type Columns struct {
	CreatedAt string
	ID        string
}

// DefaultColumns are the column names used by every listing table.
var DefaultColumns = Columns{CreatedAt: "created_at", ID: "id"}

// KeysetScope returns a gorm scope that restricts a query to rows after the
// position and orders it by (created_at, id). Column names must be trusted
// identifiers.
func KeysetScope(after *cursor.Cursor, dir Direction, cols Columns) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if after != nil {
			op := "<"
			if dir == Ascending {
				op = ">"
			}
			db = db.Where(
				fmt.Sprintf("(%s, %s) %s (?, ?)", cols.CreatedAt, cols.ID, op),
				after.CreatedAt, after.ID,
			)
		}
		return db.Order(fmt.Sprintf("%s %s, %s %s", cols.CreatedAt, dir, cols.ID, dir))
	}
}
