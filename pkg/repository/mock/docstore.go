package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// DocumentStore is an in-memory repository.DocumentStore. Errors can be
// injected per operation and every write is counted.
type DocumentStore struct {
	mu    sync.Mutex
	colls map[string]map[string]*repository.Document
	order map[string][]string
	subs  map[string]map[int]*memSub
	next  int
	Now   func() time.Time

	CreateErr error
	GetErr    error
	QueryErr  error
	UpdateErr error
	DeleteErr error

	creates, updates, deletes int
}

type memSub struct {
	q  repository.Query
	fn func([]repository.Document)
}

var _ repository.DocumentStore = (*DocumentStore)(nil)

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		colls: make(map[string]map[string]*repository.Document),
		order: make(map[string][]string),
		subs:  make(map[string]map[int]*memSub),
		Now:   time.Now,
	}
}

// Writes returns how many successful create, update and delete calls were made.
func (s *DocumentStore) Writes() (creates, updates, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, s.updates, s.deletes
}

func (s *DocumentStore) Create(ctx context.Context, collection string, data any) (string, error) {
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("document must be a JSON object: %w", err)
	}

	s.mu.Lock()
	s.next++
	id := fmt.Sprintf("doc-%d", s.next)
	now := s.Now()
	if s.colls[collection] == nil {
		s.colls[collection] = make(map[string]*repository.Document)
	}
	s.colls[collection][id] = &repository.Document{ID: id, Data: raw, Created: now, Updated: now}
	s.order[collection] = append(s.order[collection], id)
	s.creates++
	s.mu.Unlock()

	s.notify(collection, nil, raw)
	return id, nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.colls[collection][id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *DocumentStore) Query(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(collection, q), nil
}

func (s *DocumentStore) query(collection string, q repository.Query) []repository.Document {
	out := make([]repository.Document, 0)
	for _, id := range s.order[collection] {
		d, ok := s.colls[collection][id]
		if !ok || !q.Match(d.Data) {
			continue
		}
		out = append(out, *d)
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := compare(field(out[i], q.OrderBy), field(out[j], q.OrderBy))
			if q.Descending {
				return less > 0
			}
			return less < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.mu.Lock()
	d, ok := s.colls[collection][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", collection, id, repository.ErrDocumentNotFound)
	}
	var obj map[string]any
	if err := json.Unmarshal(d.Data, &obj); err != nil {
		s.mu.Unlock()
		return err
	}
	for k, v := range partial {
		obj[k] = v
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	before := d.Data
	d.Data = raw
	d.Updated = s.Now()
	s.updates++
	s.mu.Unlock()

	s.notify(collection, before, raw)
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	d, ok := s.colls[collection][id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.colls[collection], id)
	s.deletes++
	s.mu.Unlock()

	s.notify(collection, d.Data, nil)
	return nil
}

// Subscribe delivers snapshots synchronously on the writing goroutine.
func (s *DocumentStore) Subscribe(ctx context.Context, collection string, q repository.Query, fn func([]repository.Document)) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("subscribe: nil callback")
	}
	s.mu.Lock()
	s.next++
	key := s.next
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[int]*memSub)
	}
	s.subs[collection][key] = &memSub{q: q, fn: fn}
	snap := s.query(collection, q)
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[collection], key)
			s.mu.Unlock()
		})
	}, nil
}

func (s *DocumentStore) notify(collection string, before, after json.RawMessage) {
	type delivery struct {
		fn   func([]repository.Document)
		docs []repository.Document
	}
	var pending []delivery

	s.mu.Lock()
	for _, sub := range s.subs[collection] {
		if sub.q.Match(before) || sub.q.Match(after) {
			pending = append(pending, delivery{fn: sub.fn, docs: s.query(collection, sub.q)})
		}
	}
	s.mu.Unlock()

	for _, d := range pending {
		d.fn(d.docs)
	}
}

func field(d repository.Document, path string) any {
	var obj map[string]any
	if err := json.Unmarshal(d.Data, &obj); err != nil {
		return nil
	}
	v, _ := repository.Lookup(obj, path)
	return v
}

func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	// nulls sort first, like sqlite
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	return 0
}
