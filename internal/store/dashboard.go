package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mautomotiv/inventaire/internal/model"
)

// CountBranch returns the dashboard counts of one branch. An unknown branch
// counts zero everywhere.
func CountBranch(ctx context.Context, db *sql.DB, branch string) (*model.BranchCounts, error) {
	c := &model.BranchCounts{Branch: branch}
	err := db.QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM inventory_items WHERE branch = ? AND kind = ?),
		     (SELECT COUNT(*) FROM inventory_items WHERE branch = ? AND kind = ?),
		     (SELECT COUNT(*) FROM consumables WHERE branch = ? AND state = ?)`,
		branch, model.KindPC, branch, model.KindPrinter, branch, model.StateAvailable,
	).Scan(&c.PCs, &c.Printers, &c.Consumables)
	if err != nil {
		return nil, fmt.Errorf("counting branch %s: %w", branch, err)
	}
	return c, nil
}

// GetOverview returns the administrator dashboard, with one entry per
// branch in name order.
func GetOverview(ctx context.Context, db *sql.DB) (*model.Overview, error) {
	o := &model.Overview{}
	err := db.QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM users WHERE deleted_at IS NULL),
		     (SELECT COUNT(*) FROM branches WHERE deleted_at IS NULL),
		     (SELECT COUNT(*) FROM inventory_items WHERE kind = ?),
		     (SELECT COUNT(*) FROM password_requests),
		     (SELECT COUNT(*) FROM new_pcs)`,
		model.KindPC,
	).Scan(&o.Users, &o.Branches, &o.PCs, &o.PasswordRequests, &o.NewPCs)
	if err != nil {
		return nil, fmt.Errorf("counting overview: %w", err)
	}

	branches, err := ListBranches(ctx, db)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(branches))
	o.PerBranch = make([]model.BranchCounts, len(branches))
	for i, b := range branches {
		index[b.Name] = i
		o.PerBranch[i].Branch = b.Name
	}

	err = countGrouped(ctx, db,
		`SELECT branch, kind, COUNT(*) FROM inventory_items GROUP BY branch, kind`,
		func(branch, kind string, n int) {
			i, ok := index[branch]
			if !ok {
				return
			}
			switch model.ItemKind(kind) {
			case model.KindPC:
				o.PerBranch[i].PCs = n
			case model.KindPrinter:
				o.PerBranch[i].Printers = n
			}
		})
	if err != nil {
		return nil, err
	}

	err = countGrouped(ctx, db,
		`SELECT branch, state, COUNT(*) FROM consumables GROUP BY branch, state`,
		func(branch, state string, n int) {
			if i, ok := index[branch]; ok && state == model.StateAvailable {
				o.PerBranch[i].Consumables = n
			}
		})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// countGrouped runs a (branch, key, count) query and hands every row to fn.
func countGrouped(ctx context.Context, db *sql.DB, query string, fn func(branch, key string, n int)) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("counting per branch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			branch, key string
			n           int
		)
		if err := rows.Scan(&branch, &key, &n); err != nil {
			return fmt.Errorf("scanning per-branch count: %w", err)
		}
		fn(branch, key, n)
	}
	return rows.Err()
}
