package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mautomotiv/inventaire/internal/model"
)

// ErrBranchInUse is returned when deleting a branch that still has records.
var ErrBranchInUse = errors.New("branch still holds inventory")

// CreateBranch creates a new branch.
func CreateBranch(ctx context.Context, db *sql.DB, name, location string) (*model.Branch, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO branches (name, location) VALUES (?, ?)`,
		name, location,
	)
	if err != nil {
		return nil, fmt.Errorf("creating branch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting branch id: %w", err)
	}

	return GetBranch(ctx, db, id)
}

const branchColumns = `id, name, location, image_mime, created_at`

func scanBranch(row interface{ Scan(...any) error }) (*model.Branch, error) {
	b := &model.Branch{}
	var mime sql.NullString
	if err := row.Scan(&b.ID, &b.Name, &b.Location, &mime, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.ImageMime = mime.String
	return b, nil
}

// GetBranch returns a non-deleted branch by ID.
func GetBranch(ctx context.Context, db *sql.DB, id int64) (*model.Branch, error) {
	b, err := scanBranch(db.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = ? AND deleted_at IS NULL`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting branch: %w", err)
	}
	return b, nil
}

// GetBranchByName returns a non-deleted branch by name.
func GetBranchByName(ctx context.Context, db *sql.DB, name string) (*model.Branch, error) {
	b, err := scanBranch(db.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE name = ? AND deleted_at IS NULL`, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting branch by name: %w", err)
	}
	return b, nil
}

// ListBranches returns all non-deleted branches ordered by name.
func ListBranches(ctx context.Context, db *sql.DB) ([]model.Branch, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer rows.Close()

	var branches []model.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning branch: %w", err)
		}
		branches = append(branches, *b)
	}
	return branches, rows.Err()
}

// UpdateBranch renames a branch and changes its location. Inventory items,
// consumables and users follow the new name.
func UpdateBranch(ctx context.Context, db *sql.DB, id int64, name, location string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var old string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM branches WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&old)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting branch: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE branches SET name = ?, location = ? WHERE id = ?`, name, location, id,
	); err != nil {
		return fmt.Errorf("updating branch: %w", err)
	}

	if old != name {
		for _, table := range []string{"inventory_items", "consumables", "users"} {
			if _, err := tx.ExecContext(ctx,
				`UPDATE `+table+` SET branch = ? WHERE branch = ?`, name, old,
			); err != nil {
				return fmt.Errorf("renaming branch in %s: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing branch update: %w", err)
	}
	return nil
}

// DeleteBranch soft-deletes a branch. Fails with ErrBranchInUse if any
// inventory item or consumable still references it.
func DeleteBranch(ctx context.Context, db *sql.DB, id int64) error {
	b, err := GetBranch(ctx, db, id)
	if err != nil || b == nil {
		return err
	}

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM inventory_items WHERE branch = ?)
		      + (SELECT COUNT(*) FROM consumables WHERE branch = ?)`, b.Name, b.Name,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking branch inventory: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d records", ErrBranchInUse, count)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE branches SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting branch: %w", err)
	}
	return nil
}

// SetBranchImage sets a branch's photo.
func SetBranchImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE branches SET image = ?, image_mime = ? WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting branch image: %w", err)
	}
	return nil
}

// GetBranchImage returns a branch's photo and MIME type.
func GetBranchImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM branches WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting branch image: %w", err)
	}
	return image, mime.String, nil
}
