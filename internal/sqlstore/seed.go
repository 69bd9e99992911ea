// This file implements catalog seeding and sample inventory loading.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// SeedResult counts what a seeding run created.
type SeedResult struct {
	ComponentTypes int `json:"component_types"`
	Boxes          int `json:"boxes"`
	Stock          int `json:"stock"`
	SkippedStock   int `json:"skipped_stock"`
}

// Seed inserts the component types and boxes of c in one transaction. With
// reset, every table is emptied first; without it, seeding is skipped when
// the catalog already holds component types.
func (b *Backend) Seed(ctx context.Context, c *Catalog, reset bool) (SeedResult, error) {
	db, err := b.acquire()
	if err != nil {
		return SeedResult{}, err
	}
	defer b.release()

	return seedCatalog(ctx, db, c, reset)
}

// SeedStock adds each stock line through the ledger, so capacity rules
// apply. Lines naming an unknown box or component are skipped.
func (b *Backend) SeedStock(ctx context.Context, lines []StockLine) (SeedResult, error) {
	var res SeedResult
	l, err := b.Ledger()
	if err != nil {
		return res, err
	}

	for _, line := range lines {
		boxID, typeID, err := b.resolveStockLine(ctx, line)
		if errors.Is(err, types.ErrNotFound) {
			res.SkippedStock++
			continue
		}
		if err != nil {
			return res, err
		}
		if _, err := l.Add(ctx, boxID, typeID, line.Quantity); err != nil {
			return res, fmt.Errorf("stocking %d %s in %s: %w", line.Quantity, line.Component, line.Box, err)
		}
		res.Stock++
	}
	return res, nil
}

func (b *Backend) resolveStockLine(ctx context.Context, line StockLine) (int64, int64, error) {
	db, err := b.acquire()
	if err != nil {
		return 0, 0, err
	}
	defer b.release()

	var boxID, typeID int64
	err = db.QueryRowContext(ctx, "SELECT box_id FROM boxes WHERE name = ?", line.Box).Scan(&boxID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("box %q: %w", line.Box, types.ErrNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("resolving box %q: %w", line.Box, err)
	}
	err = db.QueryRowContext(ctx,
		"SELECT component_type_id FROM component_types WHERE name = ?", line.Component,
	).Scan(&typeID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("component type %q: %w", line.Component, types.ErrNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("resolving component type %q: %w", line.Component, err)
	}
	return boxID, typeID, nil
}

// seedCatalog does the work of Seed on an open database. Attach calls it
// before the backend is marked attached.
func seedCatalog(ctx context.Context, db *sql.DB, c *Catalog, reset bool) (SeedResult, error) {
	var res SeedResult

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	if reset {
		for _, table := range []string{"box_components", "boxes", "component_types"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return res, fmt.Errorf("clearing %s: %w", table, err)
			}
		}
	} else {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM component_types").Scan(&count); err != nil {
			return res, fmt.Errorf("counting component types: %w", err)
		}
		if count > 0 {
			return res, nil
		}
	}

	for i := range c.Components {
		ct := c.Components[i]
		if err := ct.Validate(); err != nil {
			return res, fmt.Errorf("seeding component type %q: %w", ct.Name, err)
		}
		if _, err := insertComponentType(tx, &ct); err != nil {
			return res, err
		}
		res.ComponentTypes++
	}

	seen := make(map[string]bool, len(c.Boxes))
	for i := range c.Boxes {
		box := c.Boxes[i]
		if err := box.Validate(); err != nil {
			return res, fmt.Errorf("seeding box %q: %w", box.Name, err)
		}
		if seen[box.Name] {
			return res, fmt.Errorf("box %q: %w", box.Name, types.ErrDuplicateName)
		}
		seen[box.Name] = true
		if _, err := insertBox(tx, &box); err != nil {
			return res, err
		}
		res.Boxes++
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing seed transaction: %w", err)
	}
	return res, nil
}
