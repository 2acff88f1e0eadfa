package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/google/uuid"
)

// CreateUser stores an account and returns its generated uid.
func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("user is nil")
	}

	id := uuid.NewString()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := r.conn.Exec(ctx, `INSERT INTO users (id, name, email, password_hash, updated) VALUES (?, ?, ?, ?, ?)`, id, u.Name, email, u.PasswordHash, now()); err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, updated, password_hash FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, updated, password_hash FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *SQLiteRepo) getUser(ctx context.Context, q string, arg string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, q, arg)
	var u models.User
	var pw sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Updated, &pw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	if pw.Valid {
		u.PasswordHash = pw.String
	}

	return &u, nil
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE users SET name = ?, email = ?, updated = ?, password_hash = ? WHERE id = ?`, u.Name, strings.ToLower(strings.TrimSpace(u.Email)), now(), u.PasswordHash, u.ID)
	return err
}

func (r *SQLiteRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}
