package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/jobboard/pkg/models"
)

const profileColumns = `id, user_id, email, display_name, photo_url, notifications, email_updates, created, updated`

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.UserProfile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO user_profiles (user_id, email, display_name, photo_url, notifications, email_updates, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Email, p.DisplayName, nullString(p.PhotoURL), p.Preferences.Notifications, p.Preferences.EmailUpdates, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("insert profile: %w", err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return p, nil
}

func (r *SQLiteRepo) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE user_profiles SET email = ?, display_name = ?, photo_url = ?, notifications = ?, email_updates = ?, updated = ? WHERE user_id = ?`,
		p.Email, p.DisplayName, nullString(p.PhotoURL), p.Preferences.Notifications, p.Preferences.EmailUpdates, now(), p.UserID)
	return err
}

// ListNotifiable returns profiles that opted into notifications.
func (r *SQLiteRepo) ListNotifiable(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE notifications = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*models.UserProfile, error) {
	var p models.UserProfile
	var photo sql.NullString
	if err := s.Scan(&p.ID, &p.UserID, &p.Email, &p.DisplayName, &photo, &p.Preferences.Notifications, &p.Preferences.EmailUpdates, &p.Created, &p.Updated); err != nil {
		return nil, err
	}
	if photo.Valid {
		p.PhotoURL = photo.String
	}

	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
