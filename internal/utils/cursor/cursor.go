// Package cursor encodes keyset pagination positions into opaque tokens.
//
// A token is the URL-safe, unpadded base64 form of a JSON object with two
// fields in this order:
//
//	{"createdAt":"<RFC3339Nano, UTC>","id":"<identifier>"}
//
// Tokens are not signed. A token is only meaningful for the query that
// produced it (same collection, sort direction and filter).
package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cursor is a position in a collection ordered by (CreatedAt, ID).
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// New creates a cursor for the given position.
func New(createdAt time.Time, id string) Cursor {
	return Cursor{CreatedAt: createdAt, ID: id}
}

// IsZero reports whether c carries no position.
func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}

// Equal reports whether c and other denote the same position.
func (c Cursor) Equal(other Cursor) bool {
	return c.CreatedAt.Equal(other.CreatedAt) && c.ID == other.ID
}

// wireCursor is the JSON form. Pointers let decoding tell a missing field
// from a zero one.
type wireCursor struct {
	CreatedAt *time.Time `json:"createdAt"`
	ID        *string    `json:"id"`
}

var encoding = base64.RawURLEncoding

// Encode converts c into an opaque token. It returns "" when c cannot be
// represented, which only happens for years outside [0, 9999]; use Marshal
// where that case must be reported.
func Encode(c Cursor) string {
	token, err := Marshal(c)
	if err != nil {
		return ""
	}
	return token
}

// Marshal converts c into an opaque token.
func Marshal(c Cursor) (string, error) {
	createdAt := c.CreatedAt.UTC()
	id := c.ID
	data, err := json.Marshal(wireCursor{CreatedAt: &createdAt, ID: &id})
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return encoding.EncodeToString(data), nil
}

// TryDecode parses a token produced by Encode. It reports false for empty,
// non-base64, non-JSON or incomplete input and never panics.
func TryDecode(token string) (Cursor, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}, false
	}

	data, err := encoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Cursor{}, false
	}

	var w wireCursor
	if err := json.Unmarshal(data, &w); err != nil {
		return Cursor{}, false
	}
	if w.CreatedAt == nil || w.ID == nil {
		return Cursor{}, false
	}

	return Cursor{CreatedAt: w.CreatedAt.UTC(), ID: *w.ID}, true
}

// Compare orders a and b by CreatedAt, then by ID. It returns -1, 0 or +1.
func Compare(a, b Cursor) int {
	switch {
	case a.CreatedAt.Before(b.CreatedAt):
		return -1
	case a.CreatedAt.After(b.CreatedAt):
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}
