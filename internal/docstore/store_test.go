package docstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/docstore"
	"github.com/garnizeh/jobboard/pkg/repository"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// subscriptions run goroutines; every test must leave none behind
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

type tickClock struct{ t time.Time }

func (c *tickClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupStore(t *testing.T, opts ...docstore.Option) *docstore.Store {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations, nil); err != nil {
		d.Close()
		t.Fatalf("migrate: %v", err)
	}

	s := docstore.New(d, nil, opts...)
	t.Cleanup(func() {
		_ = s.Close()
		_ = d.Close()
	})
	return s
}

type item struct {
	Owner  string  `json:"owner"`
	Name   string  `json:"name"`
	Rank   int     `json:"rank"`
	Active bool    `json:"active"`
	Meta   *meta   `json:"meta,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

type meta struct {
	Kind string `json:"kind"`
}

func TestCRUD(t *testing.T) {
	clock := &tickClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := setupStore(t, docstore.WithClock(clock.Now))
	ctx := context.Background()

	// missing document is (nil, nil)
	got, err := s.Get(ctx, "items", "nope")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing doc; got %v, %v", got, err)
	}

	id, err := s.Create(ctx, "items", item{Owner: "u1", Name: "first", Rank: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	got, err = s.Get(ctx, "items", id)
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	var it item
	if err := got.Decode(&it); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if it.Name != "first" || it.Owner != "u1" {
		t.Fatalf("unexpected item %+v", it)
	}
	created := got.Created

	if err := s.Update(ctx, "items", id, map[string]any{"name": "renamed", "active": true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = s.Get(ctx, "items", id)
	it = item{}
	_ = got.Decode(&it)
	if it.Name != "renamed" || !it.Active || it.Rank != 1 || it.Owner != "u1" {
		t.Fatalf("update must merge fields, got %+v", it)
	}
	if !got.Updated.After(created) || !got.Created.Equal(created) {
		t.Fatalf("expected updated timestamp to move and created to stay: %v %v", got.Created, got.Updated)
	}

	if err := s.Delete(ctx, "items", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(ctx, "items", id); got != nil {
		t.Fatalf("expected document removed")
	}
	// deleting again is a no-op
	if err := s.Delete(ctx, "items", id); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := setupStore(t)
	err := s.Update(context.Background(), "items", "missing", map[string]any{"name": "x"})
	if !errors.Is(err, repository.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestCreate_Rejects(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "items", []string{"not", "an", "object"}); !errors.Is(err, docstore.ErrNotAnObject) {
		t.Fatalf("expected ErrNotAnObject, got %v", err)
	}
	if _, err := s.Create(ctx, "bad name", item{}); !errors.Is(err, docstore.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := s.Query(ctx, "items", repository.Query{Filters: []repository.Filter{repository.Where("x') OR 1=1 --", "a")}}); !errors.Is(err, docstore.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for hostile field, got %v", err)
	}
	if _, err := s.Query(ctx, "items", repository.Query{Filters: []repository.Filter{repository.Where("owner", []int{1})}}); !errors.Is(err, docstore.ErrUnsupportedArg) {
		t.Fatalf("expected ErrUnsupportedArg for slice filter, got %v", err)
	}
	if _, err := s.Create(ctx, "items", json.RawMessage(`{"owner":"raw"}`)); err != nil {
		t.Fatalf("raw object should be accepted: %v", err)
	}
}

func TestQuery(t *testing.T) {
	clock := &tickClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := setupStore(t, docstore.WithClock(clock.Now))
	ctx := context.Background()

	seed := []item{
		{Owner: "u1", Name: "a", Rank: 3, Active: true, Meta: &meta{Kind: "x"}},
		{Owner: "u1", Name: "b", Rank: 1, Active: false},
		{Owner: "u1", Name: "c", Rank: 2, Active: true, Meta: &meta{Kind: "y"}, Score: 1.5},
		{Owner: "u2", Name: "d", Rank: 9, Active: true},
	}
	for _, it := range seed {
		if _, err := s.Create(ctx, "items", it); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := s.Create(ctx, "other", item{Owner: "u1"}); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	names := func(docs []repository.Document) string {
		out := ""
		for _, d := range docs {
			var it item
			_ = d.Decode(&it)
			out += it.Name
		}
		return out
	}

	tests := []struct {
		name string
		q    repository.Query
		want string
	}{
		{name: "all in creation order", q: repository.Query{}, want: "abcd"},
		{name: "equality", q: repository.Query{Filters: []repository.Filter{repository.Where("owner", "u1")}}, want: "abc"},
		{name: "two filters", q: repository.Query{Filters: []repository.Filter{repository.Where("owner", "u1"), repository.Where("active", true)}}, want: "ac"},
		{name: "bool false", q: repository.Query{Filters: []repository.Filter{repository.Where("active", false)}}, want: "b"},
		{name: "nested path", q: repository.Query{Filters: []repository.Filter{repository.Where("meta.kind", "y")}}, want: "c"},
		{name: "numeric", q: repository.Query{Filters: []repository.Filter{repository.Where("rank", 9)}}, want: "d"},
		{name: "float", q: repository.Query{Filters: []repository.Filter{repository.Where("score", 1.5)}}, want: "c"},
		{name: "missing field is null", q: repository.Query{Filters: []repository.Filter{repository.Where("meta", nil)}}, want: "bd"},
		{name: "order asc", q: repository.Query{OrderBy: "rank"}, want: "bcad"},
		{name: "order desc limit", q: repository.Query{OrderBy: "rank", Descending: true, Limit: 2}, want: "da"},
		{name: "filter order limit", q: repository.Query{Filters: []repository.Filter{repository.Where("owner", "u1")}, OrderBy: "name", Descending: true, Limit: 1}, want: "c"},
		{name: "no match", q: repository.Query{Filters: []repository.Filter{repository.Where("owner", "nobody")}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, "items", tt.q)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if docs == nil {
				t.Fatalf("Query must return a non-nil slice")
			}
			if got := names(docs); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestWithIDGenerator(t *testing.T) {
	n := 0
	s := setupStore(t, docstore.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	}))
	id, err := s.Create(context.Background(), "items", item{Name: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "doc-1" {
		t.Fatalf("expected generated id doc-1, got %s", id)
	}
}
