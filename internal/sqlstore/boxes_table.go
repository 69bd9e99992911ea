// This file implements the boxes table accessor.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

var _ types.Table = (*boxesTable)(nil)

// boxesTable implements the Table interface for the box registry.
type boxesTable struct {
	backend *Backend
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectBox = "SELECT box_id, name, description, created_at FROM boxes"

// Get retrieves a box by ID.
func (bt *boxesTable) Get(id string) (any, error) {
	boxID, err := types.ParseID(id)
	if err != nil {
		return nil, err
	}
	db, err := bt.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer bt.backend.release()

	return getBox(context.Background(), db, boxID, "")
}

// getBox loads one box. lockRows is the dialect suffix used inside
// mutating transactions.
func getBox(ctx context.Context, q queryer, boxID int64, lockRows string) (*types.Box, error) {
	row := q.QueryRowContext(ctx, selectBox+" WHERE box_id = ?"+lockRows, boxID)
	box, err := hydrateBox(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("box %d: %w", boxID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("getting box %d: %w", boxID, err)
	}
	return box, nil
}

// Set creates a box when id is empty, otherwise updates the name and
// description of an existing box. Names must be unique.
func (bt *boxesTable) Set(id string, data any) (string, error) {
	box, ok := data.(*types.Box)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := box.Validate(); err != nil {
		return "", err
	}

	var boxID int64
	if id != "" {
		var err error
		if boxID, err = types.ParseID(id); err != nil {
			return "", err
		}
	}

	db, err := bt.backend.acquire()
	if err != nil {
		return "", err
	}
	defer bt.backend.release()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Check name uniqueness.
	var dupID int64
	err = tx.QueryRow("SELECT box_id FROM boxes WHERE name = ? AND box_id != ?", box.Name, boxID).Scan(&dupID)
	if err == nil {
		return "", fmt.Errorf("box %q: %w", box.Name, types.ErrDuplicateName)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("checking box name uniqueness: %w", err)
	}

	if boxID == 0 {
		if boxID, err = insertBox(tx, box); err != nil {
			return "", err
		}
	} else {
		existing, err := getBox(context.Background(), tx, boxID, bt.backend.dialect.lockRows)
		if err != nil {
			return "", err
		}
		if _, err := tx.Exec(
			"UPDATE boxes SET name = ?, description = ? WHERE box_id = ?",
			box.Name, box.Description, boxID,
		); err != nil {
			return "", fmt.Errorf("updating box: %w", err)
		}
		box.CreatedAt = existing.CreatedAt
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing box: %w", err)
	}
	box.ID = boxID
	return types.FormatID(boxID), nil
}

// insertBox adds box inside tx and stamps its creation time. Name
// uniqueness is checked by the caller or the UNIQUE index.
func insertBox(tx *sql.Tx, box *types.Box) (int64, error) {
	box.CreatedAt = now()
	res, err := tx.Exec(
		"INSERT INTO boxes (name, description, created_at) VALUES (?, ?, ?)",
		box.Name, box.Description, formatTime(box.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting box: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading box id: %w", err)
	}
	return id, nil
}

// Delete removes a box together with every ledger entry it owns.
func (bt *boxesTable) Delete(id string) error {
	boxID, err := types.ParseID(id)
	if err != nil {
		return err
	}
	db, err := bt.backend.acquire()
	if err != nil {
		return err
	}
	defer bt.backend.release()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getBox(context.Background(), tx, boxID, bt.backend.dialect.lockRows); err != nil {
		return err
	}

	// The foreign key cascades too; deleting explicitly keeps the cascade
	// independent of the engine's foreign key setting.
	if _, err := tx.Exec("DELETE FROM box_components WHERE box_id = ?", boxID); err != nil {
		return fmt.Errorf("deleting box entries: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM boxes WHERE box_id = ?", boxID); err != nil {
		return fmt.Errorf("deleting box: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing box deletion: %w", err)
	}
	return nil
}

// Fetch returns boxes ordered by name. The only supported filter is
// "name" (exact match).
func (bt *boxesTable) Fetch(filter map[string]any) ([]any, error) {
	query := selectBox
	var args []any
	if name, ok := filter["name"]; ok {
		s, ok := name.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE name = ?"
		args = append(args, s)
	}
	query += " ORDER BY name"

	db, err := bt.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer bt.backend.release()

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching boxes: %w", err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		box, err := hydrateBox(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning box: %w", err)
		}
		results = append(results, box)
	}
	return results, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateBox(row scanner) (*types.Box, error) {
	var box types.Box
	var createdAt string
	if err := row.Scan(&box.ID, &box.Name, &box.Description, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt, "box created_at")
	if err != nil {
		return nil, err
	}
	box.CreatedAt = t
	return &box, nil
}
