package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Backup writes a consistent snapshot of d to dst with VACUUM INTO. An
// existing file at dst is replaced.
func Backup(ctx context.Context, d *DB, dst string) error {
	if err := removeIfExists(dst); err != nil {
		return fmt.Errorf("backup %s: %w", dst, err)
	}
	if _, err := d.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("backup %s: %w", dst, err)
	}
	return nil
}

// Restore replaces the database at dst with the snapshot at src. The
// snapshot is integrity checked and copied next to dst before being renamed
// into place, so a failed restore leaves dst untouched.
func Restore(ctx context.Context, src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("restore from %s: %w", src, err)
	}

	snap, err := New(ctx, src)
	if err != nil {
		return fmt.Errorf("restore from %s: %w", src, err)
	}
	defer snap.Close()

	var result string
	if err := snap.QueryRow(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("restore from %s: integrity check: %w", src, err)
	}
	if result != "ok" {
		return fmt.Errorf("restore from %s: integrity check: %s", src, result)
	}

	tmp := dst + ".restore"
	if err := Backup(ctx, snap, tmp); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := removeIfExists(dst + suffix); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("restore to %s: %w", dst, err)
		}
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("restore to %s: %w", dst, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
