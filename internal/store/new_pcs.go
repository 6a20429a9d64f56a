package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mautomotiv/inventaire/internal/model"
)

const newPCColumns = `id, brand, model, quantity, arrival_date, admin_name, supplier,
	availability, created_at, updated_at`

func scanNewPC(row interface{ Scan(...any) error }, n *model.NewPC) error {
	return row.Scan(&n.ID, &n.Brand, &n.Model, &n.Quantity, &n.ArrivalDate, &n.AdminName,
		&n.Supplier, &n.Availability, &n.CreatedAt, &n.UpdatedAt)
}

// CreateNewPC records a delivery of new PCs. A delivery without an arrival
// date arrived today.
func CreateNewPC(ctx context.Context, db *sql.DB, n model.NewPC) (*model.NewPC, error) {
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if n.AdminName == "" {
		return nil, fmt.Errorf("%w: admin_nom required", ErrInvalid)
	}
	if n.ArrivalDate == "" {
		n.ArrivalDate = time.Now().Format(time.DateOnly)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO new_pcs (brand, model, quantity, arrival_date, admin_name, supplier, availability)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.Brand, n.Model, n.Quantity, n.ArrivalDate, n.AdminName, n.Supplier, n.Availability,
	)
	if err != nil {
		return nil, fmt.Errorf("creating new pc: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting new pc id: %w", err)
	}
	return GetNewPC(ctx, db, id)
}

// GetNewPC returns a delivery by ID.
func GetNewPC(ctx context.Context, db *sql.DB, id int64) (*model.NewPC, error) {
	n := &model.NewPC{}
	err := scanNewPC(db.QueryRowContext(ctx,
		`SELECT `+newPCColumns+` FROM new_pcs WHERE id = ?`, id,
	), n)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting new pc: %w", err)
	}
	return n, nil
}

// ListNewPCs returns deliveries, latest arrival first. A non-empty
// availability narrows the list.
func ListNewPCs(ctx context.Context, db *sql.DB, availability string) ([]model.NewPC, error) {
	query := `SELECT ` + newPCColumns + ` FROM new_pcs`
	var args []any
	if availability != "" {
		query += ` WHERE availability = ?`
		args = append(args, availability)
	}
	query += ` ORDER BY arrival_date DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing new pcs: %w", err)
	}
	defer rows.Close()

	var list []model.NewPC
	for rows.Next() {
		var n model.NewPC
		if err := scanNewPC(rows, &n); err != nil {
			return nil, fmt.Errorf("scanning new pc: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// UpdateNewPC replaces a delivery. An empty arrival date or admin name keeps
// the stored one; the supplier is always replaced.
func UpdateNewPC(ctx context.Context, db *sql.DB, id int64, n model.NewPC) (*model.NewPC, error) {
	existing, err := GetNewPC(ctx, db, id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if n.ArrivalDate == "" {
		n.ArrivalDate = existing.ArrivalDate
	}
	if n.AdminName == "" {
		n.AdminName = existing.AdminName
	}

	_, err = db.ExecContext(ctx,
		`UPDATE new_pcs SET brand = ?, model = ?, quantity = ?, arrival_date = ?,
		     admin_name = ?, supplier = ?, availability = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		n.Brand, n.Model, n.Quantity, n.ArrivalDate, n.AdminName, n.Supplier, n.Availability, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating new pc: %w", err)
	}
	return GetNewPC(ctx, db, id)
}

// DeleteNewPC removes a delivery.
func DeleteNewPC(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM new_pcs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting new pc: %w", err)
	}
	return nil
}
