package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mautomotiv/inventaire/internal/model"
)

const passwordRequestColumns = `id, name, email, message, created_at`

// CreatePasswordRequest records a password-reset request.
func CreatePasswordRequest(ctx context.Context, db *sql.DB, p model.PasswordRequest) (*model.PasswordRequest, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO password_requests (name, email, message) VALUES (?, ?, ?)`,
		p.Name, p.Email, p.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating password request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting password request id: %w", err)
	}

	created := &model.PasswordRequest{}
	err = db.QueryRowContext(ctx,
		`SELECT `+passwordRequestColumns+` FROM password_requests WHERE id = ?`, id,
	).Scan(&created.ID, &created.Name, &created.Email, &created.Message, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting password request: %w", err)
	}
	return created, nil
}

// ListPasswordRequests returns all requests, newest first.
func ListPasswordRequests(ctx context.Context, db *sql.DB) ([]model.PasswordRequest, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+passwordRequestColumns+` FROM password_requests ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing password requests: %w", err)
	}
	defer rows.Close()

	var requests []model.PasswordRequest
	for rows.Next() {
		var p model.PasswordRequest
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Message, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning password request: %w", err)
		}
		requests = append(requests, p)
	}
	return requests, rows.Err()
}

// DeletePasswordRequest removes one request. It reports whether the request
// existed.
func DeletePasswordRequest(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM password_requests WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting password request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting password request: %w", err)
	}
	return n > 0, nil
}

// DeleteAllPasswordRequests empties the request list and returns how many
// requests were removed.
func DeleteAllPasswordRequests(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM password_requests`)
	if err != nil {
		return 0, fmt.Errorf("deleting password requests: %w", err)
	}
	return result.RowsAffected()
}
