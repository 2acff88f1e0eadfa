// Package docstore implements repository.DocumentStore on top of the sqlite
// `documents` table. Filters and ordering are evaluated with json_extract;
// subscriptions are served by an in-process broker fed by every write.
package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/google/uuid"
)

var (
	ErrClosed         = errors.New("document store closed")
	ErrInvalidName    = errors.New("invalid collection or field name")
	ErrNotAnObject    = errors.New("document must be a JSON object")
	ErrUnsupportedArg = errors.New("unsupported filter value")
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Store is a JSON document store backed by sqlite.
type Store struct {
	conn   *db.DB
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu     sync.Mutex
	subs   map[string]map[uint64]*subscription
	nextID uint64
	closed bool
	wg     sync.WaitGroup
}

var _ repository.DocumentStore = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides document key generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(conn *db.DB, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	s := &Store{
		conn:   conn,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		subs:   make(map[string]map[uint64]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(ctx context.Context, collection string, data any) (string, error) {
	if err := checkName(collection); err != nil {
		return "", err
	}
	raw, err := encodeObject(data)
	if err != nil {
		return "", err
	}

	id := s.newID()
	ts := s.now().UTC().UnixMicro()
	if _, err := s.conn.Exec(ctx, `INSERT INTO documents (collection, id, data, created, updated) VALUES (?, ?, ?, ?, ?)`, collection, id, string(raw), ts, ts); err != nil {
		return "", fmt.Errorf("insert %s document: %w", collection, err)
	}

	s.publish(collection, nil, raw)
	return id, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	if err := checkName(collection); err != nil {
		return nil, err
	}

	row := s.conn.QueryRow(ctx, `SELECT id, data, created, updated FROM documents WHERE collection = ? AND id = ?`, collection, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	return doc, nil
}

func (s *Store) Query(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	stmt, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryRows(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []repository.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	return docs, nil
}

// Update merges partial into the stored object inside one transaction.
// Concurrent read-modify-write cycles built on top of Query+Update remain
// last-write-wins.
func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := checkName(collection); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var before string
	if err := tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&before); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s/%s", repository.ErrDocumentNotFound, collection, id)
		}
		return fmt.Errorf("load %s/%s: %w", collection, id, err)
	}

	fields, err := decodeObject([]byte(before))
	if err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for k, v := range partial {
		fields[k] = v
	}
	after, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE documents SET data = ?, updated = ? WHERE collection = ? AND id = ?`, string(after), s.now().UTC().UnixMicro(), collection, id); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update %s/%s: %w", collection, id, err)
	}

	s.publish(collection, []byte(before), after)
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := checkName(collection); err != nil {
		return err
	}

	var before string
	err := s.conn.QueryRow(ctx, `SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&before)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", collection, id, err)
	}

	if _, err := s.conn.Exec(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	s.publish(collection, []byte(before), nil)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*repository.Document, error) {
	var (
		doc     repository.Document
		data    string
		created int64
		updated int64
	)
	if err := r.Scan(&doc.ID, &data, &created, &updated); err != nil {
		return nil, err
	}
	doc.Data = json.RawMessage(data)
	doc.Created = time.UnixMicro(created).UTC()
	doc.Updated = time.UnixMicro(updated).UTC()
	return &doc, nil
}

func buildQuery(collection string, q repository.Query) (string, []any, error) {
	if err := checkName(collection); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, data, created, updated FROM documents WHERE collection = ?`)
	args := []any{collection}

	for _, f := range q.Filters {
		if err := checkName(f.Field); err != nil {
			return "", nil, err
		}
		if f.Value == nil {
			sb.WriteString(` AND json_extract(data, ?) IS NULL`)
			args = append(args, "$."+f.Field)
			continue
		}
		v, err := sqlValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("filter %s: %w", f.Field, err)
		}
		sb.WriteString(` AND json_extract(data, ?) = ?`)
		args = append(args, "$."+f.Field, v)
	}

	if q.OrderBy != "" {
		if err := checkName(q.OrderBy); err != nil {
			return "", nil, err
		}
		sb.WriteString(` ORDER BY json_extract(data, ?)`)
		args = append(args, "$."+q.OrderBy)
		if q.Descending {
			sb.WriteString(` DESC`)
		}
		sb.WriteString(`, created, id`)
	} else {
		sb.WriteString(` ORDER BY created, id`)
	}

	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	return sb.String(), args, nil
}

// sqlValue converts a filter value to what json_extract yields for the same
// JSON scalar: text, a number, or 0/1 for booleans.
func sqlValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var norm any
	if err := json.Unmarshal(b, &norm); err != nil {
		return nil, err
	}
	switch n := norm.(type) {
	case string, float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedArg, v)
	}
}

func checkName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func encodeObject(data any) ([]byte, error) {
	raw, ok := data.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(data); err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrNotAnObject
	}
	return trimmed, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
