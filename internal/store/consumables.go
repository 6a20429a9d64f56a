package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mautomotiv/inventaire/internal/model"
)

const consumableColumns = `id, brand, reference, toner_type, black, cyan, magenta, yellow,
	color_black, drum, branch, description, state, created_at, updated_at`

func scanConsumable(row interface{ Scan(...any) error }, c *model.Consumable) error {
	return row.Scan(&c.ID, &c.Brand, &c.Reference, &c.TonerType, &c.Black, &c.Cyan,
		&c.Magenta, &c.Yellow, &c.ColorBlack, &c.Drum, &c.Branch, &c.Description,
		&c.State, &c.CreatedAt, &c.UpdatedAt)
}

// prepareConsumable fills in defaults and checks the quantity invariant.
// Records without a toner type are classified from their quantities.
func prepareConsumable(c *model.Consumable) error {
	if c.State == "" {
		c.State = model.StateAvailable
	}
	if c.TonerType == "" {
		c.TonerType = model.Classify(*c)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// CreateConsumable inserts a consumable. Quantities that do not apply to its
// toner type must already be marked not applicable.
func CreateConsumable(ctx context.Context, db *sql.DB, c model.Consumable) (*model.Consumable, error) {
	if err := prepareConsumable(&c); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO consumables (brand, reference, toner_type, black, cyan, magenta, yellow,
		     color_black, drum, branch, description, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Brand, c.Reference, c.TonerType, c.Black, c.Cyan, c.Magenta, c.Yellow,
		c.ColorBlack, c.Drum, c.Branch, c.Description, c.State,
	)
	if err != nil {
		return nil, fmt.Errorf("creating consumable: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting consumable id: %w", err)
	}

	return GetConsumable(ctx, db, id)
}

// GetConsumable returns a consumable by ID.
func GetConsumable(ctx context.Context, db *sql.DB, id int64) (*model.Consumable, error) {
	c := &model.Consumable{}
	err := scanConsumable(db.QueryRowContext(ctx,
		`SELECT `+consumableColumns+` FROM consumables WHERE id = ?`, id,
	), c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting consumable: %w", err)
	}
	return c, nil
}

// ConsumableFilter narrows ListConsumables. Search matches brand or reference.
type ConsumableFilter struct {
	Branch string
	State  string
	Search string
}

// ListConsumables returns consumables matching f ordered by brand and
// reference.
func ListConsumables(ctx context.Context, db *sql.DB, f ConsumableFilter) ([]model.Consumable, error) {
	var (
		where []string
		args  []any
	)
	if f.Branch != "" {
		where = append(where, "branch = ?")
		args = append(args, f.Branch)
	}
	if f.State != "" {
		where = append(where, "state = ?")
		args = append(args, f.State)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, `(brand LIKE ? ESCAPE '\' OR reference LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(s) + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + consumableColumns + ` FROM consumables`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY brand, reference, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing consumables: %w", err)
	}
	defer rows.Close()

	var consumables []model.Consumable
	for rows.Next() {
		var c model.Consumable
		if err := scanConsumable(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning consumable: %w", err)
		}
		consumables = append(consumables, c)
	}
	return consumables, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// UpdateConsumable replaces a consumable. When the toner type changes, the
// quantities that no longer apply are marked not applicable and the new ones
// start at 0 unless given; otherwise the record must already satisfy the
// invariant.
func UpdateConsumable(ctx context.Context, db *sql.DB, id int64, c model.Consumable) (*model.Consumable, error) {
	existing, err := GetConsumable(ctx, db, id)
	if err != nil || existing == nil {
		return nil, err
	}

	if c.TonerType.Valid() && c.TonerType != existing.TonerType {
		c, err = model.Resentinel(c, c.TonerType, c.HasDrum())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if err := prepareConsumable(&c); err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE consumables SET brand = ?, reference = ?, toner_type = ?, black = ?, cyan = ?,
		     magenta = ?, yellow = ?, color_black = ?, drum = ?, branch = ?, description = ?,
		     state = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		c.Brand, c.Reference, c.TonerType, c.Black, c.Cyan, c.Magenta, c.Yellow,
		c.ColorBlack, c.Drum, c.Branch, c.Description, c.State, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating consumable: %w", err)
	}
	return GetConsumable(ctx, db, id)
}

// DeleteConsumable removes a consumable.
func DeleteConsumable(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM consumables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting consumable: %w", err)
	}
	return nil
}
