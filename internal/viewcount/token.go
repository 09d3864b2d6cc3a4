// Package viewcount counts article views at most once per visitor. The set of
// articles a visitor has already been counted for travels in a cookie.
package viewcount

import (
	"strconv"
	"strings"
)

// Separator joins article ids in the serialized token.
const Separator = "-"

// DefaultMaxEntries bounds a token when no limit is configured.
const DefaultMaxEntries = 200

// Token is an ordered set of article ids, oldest first.
type Token struct {
	ids   []int64
	seen  map[int64]struct{}
	limit int
}

// Parse decodes a serialized token. Empty, non-numeric and non-positive
// entries are dropped, as are duplicates. When raw holds more than limit
// ids only the newest are kept.
func Parse(raw string, limit int) *Token {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	t := &Token{seen: make(map[int64]struct{}), limit: limit}
	if raw == "" {
		return t
	}
	for _, part := range strings.Split(raw, Separator) {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		t.Add(id)
	}
	return t
}

// Contains reports whether id has already been counted.
func (t *Token) Contains(id int64) bool {
	_, ok := t.seen[id]
	return ok
}

// Add appends id, evicting the oldest entry once the token is full.
// Adding an id that is already present is a no-op.
func (t *Token) Add(id int64) {
	if t.Contains(id) {
		return
	}
	if len(t.ids) >= t.limit {
		oldest := t.ids[0]
		t.ids = t.ids[1:]
		delete(t.seen, oldest)
	}
	t.ids = append(t.ids, id)
	t.seen[id] = struct{}{}
}

// Len returns the number of ids in the token.
func (t *Token) Len() int {
	return len(t.ids)
}

// String serializes the token for the cookie.
func (t *Token) String() string {
	parts := make([]string, len(t.ids))
	for i, id := range t.ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, Separator)
}
