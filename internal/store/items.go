package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mautomotiv/inventaire/internal/model"
)

const itemColumns = `id, kind, branch, asset_name, serial_number, assigned_user, email, service,
	description, assigned_on, status, remark, location, ip_address, hostname, model,
	created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }, it *model.InventoryItem) error {
	return row.Scan(&it.ID, &it.Kind, &it.Branch, &it.AssetName, &it.SerialNumber,
		&it.AssignedUser, &it.Email, &it.Service, &it.Description, &it.AssignedOn,
		&it.Status, &it.Remark, &it.Location, &it.IPAddress, &it.Hostname, &it.Model,
		&it.CreatedAt, &it.UpdatedAt)
}

// CreateInventoryItem inserts a PC or printer. Records are never merged: the
// same serial number imported twice yields two rows.
func CreateInventoryItem(ctx context.Context, db *sql.DB, it model.InventoryItem) (*model.InventoryItem, error) {
	if err := it.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO inventory_items (kind, branch, asset_name, serial_number, assigned_user,
		     email, service, description, assigned_on, status, remark, location, ip_address,
		     hostname, model)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.Kind, it.Branch, it.AssetName, it.SerialNumber, it.AssignedUser, it.Email,
		it.Service, it.Description, it.AssignedOn, it.Status, it.Remark, it.Location,
		it.IPAddress, it.Hostname, it.Model,
	)
	if err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inventory item id: %w", err)
	}

	return GetInventoryItem(ctx, db, id)
}

// GetInventoryItem returns an inventory item by ID.
func GetInventoryItem(ctx context.Context, db *sql.DB, id int64) (*model.InventoryItem, error) {
	it := &model.InventoryItem{}
	err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id,
	), it)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	return it, nil
}

// ItemFilter narrows ListInventoryItems. Empty fields match everything.
type ItemFilter struct {
	Branch string
	Kind   model.ItemKind
}

// ListInventoryItems returns inventory items matching f, PCs by asset name and
// printers by location.
func ListInventoryItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.InventoryItem, error) {
	var (
		where []string
		args  []any
	)
	if f.Branch != "" {
		where = append(where, "branch = ?")
		args = append(args, f.Branch)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}

	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY kind, branch, asset_name, location, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inventory items: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		var it model.InventoryItem
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateInventoryItem replaces the fields of an existing item. The kind of an
// item cannot change.
func UpdateInventoryItem(ctx context.Context, db *sql.DB, id int64, it model.InventoryItem) (*model.InventoryItem, error) {
	existing, err := GetInventoryItem(ctx, db, id)
	if err != nil || existing == nil {
		return nil, err
	}
	it.Kind = existing.Kind
	if err := it.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE inventory_items SET branch = ?, asset_name = ?, serial_number = ?,
		     assigned_user = ?, email = ?, service = ?, description = ?, assigned_on = ?,
		     status = ?, remark = ?, location = ?, ip_address = ?, hostname = ?, model = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		it.Branch, it.AssetName, it.SerialNumber, it.AssignedUser, it.Email, it.Service,
		it.Description, it.AssignedOn, it.Status, it.Remark, it.Location, it.IPAddress,
		it.Hostname, it.Model, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating inventory item: %w", err)
	}
	return GetInventoryItem(ctx, db, id)
}

// DeleteInventoryItem removes an inventory item.
func DeleteInventoryItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting inventory item: %w", err)
	}
	return nil
}
