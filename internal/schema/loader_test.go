package schema_test

import (
	"context"
	"errors"
	"testing"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/schema"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// fakeSchemaRepo is a small in-memory implementation of repository.SchemaRepo for tests.
type fakeSchemaRepo struct {
	schemas map[string]models.DocumentSchema
	listErr error
}

func newFakeSchemaRepo() *fakeSchemaRepo {
	return &fakeSchemaRepo{schemas: make(map[string]models.DocumentSchema)}
}

func (f *fakeSchemaRepo) UpsertSchema(ctx context.Context, name, schemaJSON string) error {
	f.schemas[name] = models.DocumentSchema{ID: int64(len(f.schemas) + 1), Name: name, SchemaJSON: schemaJSON}
	return nil
}

func (f *fakeSchemaRepo) GetSchema(ctx context.Context, name string) (*models.DocumentSchema, error) {
	if s, ok := f.schemas[name]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSchemaRepo) ListSchemas(ctx context.Context) ([]models.DocumentSchema, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.DocumentSchema, 0, len(f.schemas))
	for _, s := range f.schemas {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSchemaRepo) DeleteSchema(ctx context.Context, name string) error {
	if _, ok := f.schemas[name]; !ok {
		return errors.New("not found")
	}
	delete(f.schemas, name)
	return nil
}

var _ repository.SchemaRepo = (*fakeSchemaRepo)(nil)

func TestLoader_ReloadAndValidate(t *testing.T) {
	ctx := context.Background()
	fr := newFakeSchemaRepo()
	doc := `{"$schema":"http://json-schema.org/draft-07/schema#","type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`
	if err := fr.UpsertSchema(ctx, "thing", doc); err != nil {
		t.Fatalf("seed schema failed: %v", err)
	}

	l, err := schema.NewLoader(ctx, fr)
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	if s, ok := l.GetSchema("thing"); !ok || s == nil {
		t.Fatalf("expected schema in cache for thing")
	}

	if err := l.Validate(ctx, "thing", []byte(`{"name":"ok"}`)); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
	if err := l.Validate(ctx, "thing", []byte(`{"other":1}`)); !errors.Is(err, schema.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if err := l.Validate(ctx, "missing", []byte(`{}`)); !errors.Is(err, schema.ErrUnknownSchema) {
		t.Fatalf("expected ErrUnknownSchema, got %v", err)
	}

	// reload picks up removals
	_ = fr.DeleteSchema(ctx, "thing")
	if err := l.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := l.GetSchema("thing"); ok {
		t.Fatalf("expected schema gone after reload")
	}
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	fr := newFakeSchemaRepo()
	fr.listErr = errors.New("db down")
	if _, err := schema.NewLoader(ctx, fr); err == nil {
		t.Fatalf("expected error when repository fails")
	}

	bad := newFakeSchemaRepo()
	_ = bad.UpsertSchema(ctx, "broken", `{not json`)
	if _, err := schema.NewLoader(ctx, bad); err == nil {
		t.Fatalf("expected compile error for malformed schema")
	}
}

func TestSeedSchemas(t *testing.T) {
	ctx := context.Background()
	l, err := schema.NewLoader(ctx, schema.NewFSRepo(dbfs.SeedFiles, "seed/schemas"))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	tests := []struct {
		name  string
		kind  string
		doc   string
		valid bool
	}{
		{
			name:  "interest ok",
			kind:  "job_interest",
			doc:   `{"userId":"u1","jobId":"00000001","status":"interested","priority":"medium","notes":[],"tags":[],"statusHistory":[{"status":"interested","timestamp":"2026-01-01T00:00:00Z","userId":"u1"}]}`,
			valid: true,
		},
		{
			name: "interest empty history",
			kind: "job_interest",
			doc:  `{"userId":"u1","jobId":"00000001","status":"interested","statusHistory":[]}`,
		},
		{
			name: "interest unknown status",
			kind: "job_interest",
			doc:  `{"userId":"u1","jobId":"00000001","status":"ghosted","statusHistory":[{"status":"ghosted","timestamp":"t","userId":"u1"}]}`,
		},
		{
			name:  "job ok",
			kind:  "job",
			doc:   `{"jobId":"00000042","title":"Engineer","status":"open"}`,
			valid: true,
		},
		{
			name: "job bad id",
			kind: "job",
			doc:  `{"jobId":"abc","title":"Engineer","status":"open"}`,
		},
		{
			name:  "category ok",
			kind:  "category",
			doc:   `{"id":"data-science","label":"Data Science"}`,
			valid: true,
		},
		{
			name: "category missing label",
			kind: "category",
			doc:  `{"id":"data-science"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Validate(ctx, tt.kind, []byte(tt.doc))
			if tt.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, schema.ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}
