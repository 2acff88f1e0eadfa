package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// FSRepo is a read-only repository.SchemaRepo over <dir>/<name>.json files,
// used where no database is at hand (CLI, tests).
type FSRepo struct {
	fsys fs.FS
	dir  string
}

var _ repository.SchemaRepo = (*FSRepo)(nil)

var errReadOnly = errors.New("schema repo is read-only")

func NewFSRepo(fsys fs.FS, dir string) *FSRepo {
	return &FSRepo{fsys: fsys, dir: dir}
}

func (r *FSRepo) ListSchemas(ctx context.Context) ([]models.DocumentSchema, error) {
	entries, err := fs.ReadDir(r.fsys, r.dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %s: %w", r.dir, err)
	}

	out := make([]models.DocumentSchema, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := fs.ReadFile(r.fsys, path.Join(r.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		out = append(out, models.DocumentSchema{
			Name:       strings.TrimSuffix(e.Name(), ".json"),
			SchemaJSON: string(b),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *FSRepo) GetSchema(ctx context.Context, name string) (*models.DocumentSchema, error) {
	b, err := fs.ReadFile(r.fsys, path.Join(r.dir, name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return &models.DocumentSchema{Name: name, SchemaJSON: string(b)}, nil
}

func (r *FSRepo) UpsertSchema(ctx context.Context, name, schemaJSON string) error {
	return errReadOnly
}

func (r *FSRepo) DeleteSchema(ctx context.Context, name string) error {
	return errReadOnly
}
