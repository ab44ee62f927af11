// Package pagination holds the keyset cursor and page-size rules shared by
// every list endpoint.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultLimit is used when the client sends no limit or an unusable one.
	DefaultLimit = 20
	// MaxLimit is the largest page a client may request.
	MaxLimit = 100
)

// ErrInvalidCursor is returned for tokens this server did not issue.
var ErrInvalidCursor = errors.New("invalid page token")

// Cursor is the position of the last item of a page. Ordering is
// (created_at DESC, id DESC), so the pair is unique and total.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

type cursorPayload struct {
	T int64  `json:"t"`
	I string `json:"i"`
}

// Encode returns the opaque page token for c.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(cursorPayload{T: c.CreatedAt.UnixNano(), I: c.ID})
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses a page token. An empty token yields nil and no error.
func Decode(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var p cursorPayload
	if err := json.Unmarshal(b, &p); err != nil || p.I == "" || p.T <= 0 {
		return nil, ErrInvalidCursor
	}
	return &Cursor{CreatedAt: time.Unix(0, p.T).UTC(), ID: p.I}, nil
}

// After returns the cursor pointing at the given item.
func After(createdAt time.Time, id string) *Cursor {
	return &Cursor{CreatedAt: createdAt.UTC(), ID: id}
}

// Token returns the encoded cursor, or nil for the end of the stream.
func (c *Cursor) Token() *string {
	if c == nil {
		return nil
	}
	s := c.Encode()
	return &s
}

// ParseLimit turns the raw limit parameter into a page size in [1, MaxLimit].
// Missing, unparsable or non-positive values fall back to DefaultLimit.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	return ClampLimit(n)
}

// ClampLimit bounds an already-parsed limit.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Trim applies the limit+1 rule: when the store returned more than limit
// rows the surplus is dropped and hasMore is true.
func Trim[T any](rows []T, limit int) (page []T, hasMore bool) {
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}
