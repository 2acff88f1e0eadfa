// Package schema guards document decoding with JSON Schemas kept in the
// document_schemas table (or any other repository.SchemaRepo).
package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/qri-io/jsonschema"
)

var (
	ErrUnknownSchema   = errors.New("unknown document schema")
	ErrInvalidDocument = errors.New("document does not match schema")
)

// Loader loads and caches compiled JSON schemas from the repository.
type Loader struct {
	repo  repository.SchemaRepo
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

func NewLoader(ctx context.Context, r repository.SchemaRepo) (*Loader, error) {
	l := &Loader{
		repo:  r,
		cache: make(map[string]*jsonschema.Schema),
	}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}

	return l, nil
}

// GetSchema returns the compiled schema registered under name.
func (l *Loader) GetSchema(name string) (*jsonschema.Schema, bool) {
	l.mu.RLock()
	s, ok := l.cache[name]
	l.mu.RUnlock()

	return s, ok
}

// Reload loads all schemas from the repository and compiles them. The
// previous cache stays in place when any schema fails to compile.
func (l *Loader) Reload(ctx context.Context) error {
	rows, err := l.repo.ListSchemas(ctx)
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}

	newCache := make(map[string]*jsonschema.Schema, len(rows))
	for _, r := range rows {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(r.SchemaJSON), rs); err != nil {
			return fmt.Errorf("compile schema %s: %w", r.Name, err)
		}
		newCache[r.Name] = rs
	}

	l.mu.Lock()
	l.cache = newCache
	l.mu.Unlock()
	return nil
}

// Validate checks raw against the schema registered under name. Validation
// failures wrap ErrInvalidDocument and list every key error.
func (l *Loader) Validate(ctx context.Context, name string, raw []byte) error {
	s, ok := l.GetSchema(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	kerrs, err := s.ValidateBytes(ctx, raw)
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if len(kerrs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(kerrs))
	for _, ke := range kerrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", ke.PropertyPath, ke.Message))
	}
	return fmt.Errorf("%w (%s): %s", ErrInvalidDocument, name, strings.Join(msgs, "; "))
}
