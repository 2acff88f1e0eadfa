package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/garnizeh/jobboard/pkg/models"
)

// UpsertSchema inserts or replaces a document schema by name.
func (r *SQLiteRepo) UpsertSchema(ctx context.Context, name, schemaJSON string) error {
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO document_schemas (name, schema_json, created, updated) VALUES (?, ?, ?, ?) ON CONFLICT(name) DO UPDATE SET schema_json=excluded.schema_json, updated=excluded.updated`, name, schemaJSON, ts, ts)
	return err
}

func (r *SQLiteRepo) GetSchema(ctx context.Context, name string) (*models.DocumentSchema, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, schema_json, created, updated FROM document_schemas WHERE name = ?`, name)
	var s models.DocumentSchema
	if err := row.Scan(&s.ID, &s.Name, &s.SchemaJSON, &s.Created, &s.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepo) ListSchemas(ctx context.Context) ([]models.DocumentSchema, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, schema_json, created, updated FROM document_schemas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentSchema
	for rows.Next() {
		var s models.DocumentSchema
		if err := rows.Scan(&s.ID, &s.Name, &s.SchemaJSON, &s.Created, &s.Updated); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteSchema(ctx context.Context, name string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM document_schemas WHERE name = ?`, name)
	return err
}
