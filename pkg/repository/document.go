package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDocumentNotFound = errors.New("document not found")

type Document struct {
	ID      string          `json:"id"`
	Data    json.RawMessage `json:"data"`
	Created time.Time       `json:"created"`
	Updated time.Time       `json:"updated"`
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Filter is an equality condition on a (dotted) field path.
type Filter struct {
	Field string
	Value any
}

func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Match reports whether the JSON object raw satisfies every filter.
// Invalid JSON never matches.
func (q Query) Match(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	for _, f := range q.Filters {
		got, ok := Lookup(fields, f.Field)
		if !ok {
			if f.Value != nil {
				return false
			}
			continue
		}
		if !equalJSON(got, f.Value) {
			return false
		}
	}
	return true
}

// Lookup resolves a dotted path inside a decoded JSON object.
func Lookup(fields map[string]any, path string) (any, bool) {
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// equalJSON compares a decoded JSON value with a Go filter value by
// round-tripping the filter value through encoding/json.
func equalJSON(got, want any) bool {
	b, err := json.Marshal(want)
	if err != nil {
		return false
	}
	var norm any
	if err := json.Unmarshal(b, &norm); err != nil {
		return false
	}
	switch w := norm.(type) {
	case nil:
		return got == nil
	case string, float64, bool:
		return got == w
	default:
		// equality filters only apply to scalars
		return false
	}
}
