package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/garnizeh/jobboard/pkg/repository"
)

type subscription struct {
	id         uint64
	collection string
	query      repository.Query
	fn         func([]repository.Document)
	notify     chan struct{}
	stop       chan struct{}
	once       sync.Once
}

// Subscribe registers fn for the result set of q. fn receives the full
// result once immediately and again after each write touching a matching
// document; pending notifications are coalesced and deliveries for one
// subscription never overlap. The subscription ends when the returned func
// is called, ctx is done or the store is closed.
func (s *Store) Subscribe(ctx context.Context, collection string, q repository.Query, fn func([]repository.Document)) (func(), error) {
	if fn == nil {
		return nil, errors.New("subscribe: nil callback")
	}
	if _, _, err := buildQuery(collection, q); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.nextID++
	sub := &subscription{
		id:         s.nextID,
		collection: collection,
		query:      q,
		fn:         fn,
		notify:     make(chan struct{}, 1),
		stop:       make(chan struct{}),
	}
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[uint64]*subscription)
	}
	s.subs[collection][sub.id] = sub
	s.wg.Add(1)
	s.mu.Unlock()

	sub.notify <- struct{}{}
	go s.run(ctx, sub)

	return func() { s.unsubscribe(sub) }, nil
}

// Close ends every subscription and waits for their goroutines. It does not
// close the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	var all []*subscription
	for _, byID := range s.subs {
		for _, sub := range byID {
			all = append(all, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range all {
		s.unsubscribe(sub)
	}
	s.wg.Wait()
	return nil
}

func (s *Store) run(ctx context.Context, sub *subscription) {
	defer s.wg.Done()
	for {
		select {
		case <-sub.stop:
			return
		case <-ctx.Done():
			s.unsubscribe(sub)
			return
		case <-sub.notify:
			select {
			case <-sub.stop:
				return
			default:
			}

			docs, err := s.Query(ctx, sub.collection, sub.query)
			if err != nil {
				if ctx.Err() != nil {
					s.unsubscribe(sub)
					return
				}
				s.logger.Error("subscription query", slog.String("collection", sub.collection), slog.Any("err", err))
				continue
			}
			sub.fn(docs)
		}
	}
}

func (s *Store) unsubscribe(sub *subscription) {
	sub.once.Do(func() {
		close(sub.stop)
		s.mu.Lock()
		delete(s.subs[sub.collection], sub.id)
		s.mu.Unlock()
	})
}

// publish wakes every subscription whose query matched the document before
// or after a write.
func (s *Store) publish(collection string, before, after []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs[collection] {
		if !sub.query.Match(before) && !sub.query.Match(after) {
			continue
		}
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}
