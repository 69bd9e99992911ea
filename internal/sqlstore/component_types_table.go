// This file implements the component catalog table accessor.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

var _ types.Table = (*componentTypesTable)(nil)

// componentTypesTable implements the Table interface for the catalog.
// Component types are immutable once created.
type componentTypesTable struct {
	backend *Backend
}

const selectComponentType = "SELECT component_type_id, name, description, category, max_per_box FROM component_types"

// Get retrieves a component type by ID.
func (ct *componentTypesTable) Get(id string) (any, error) {
	typeID, err := types.ParseID(id)
	if err != nil {
		return nil, err
	}
	db, err := ct.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer ct.backend.release()

	return getComponentType(context.Background(), db, typeID, "")
}

func getComponentType(ctx context.Context, q queryer, typeID int64, lockRows string) (*types.ComponentType, error) {
	row := q.QueryRowContext(ctx, selectComponentType+" WHERE component_type_id = ?"+lockRows, typeID)
	c, err := hydrateComponentType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("component type %d: %w", typeID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("getting component type %d: %w", typeID, err)
	}
	return c, nil
}

// Set creates a component type. Updating an existing one returns
// ErrImmutable.
func (ct *componentTypesTable) Set(id string, data any) (string, error) {
	c, ok := data.(*types.ComponentType)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		if _, err := types.ParseID(id); err != nil {
			return "", err
		}
		return "", types.ErrImmutable
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	db, err := ct.backend.acquire()
	if err != nil {
		return "", err
	}
	defer ct.backend.release()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	typeID, err := insertComponentType(tx, c)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing component type: %w", err)
	}
	c.ID = typeID
	return types.FormatID(typeID), nil
}

// insertComponentType adds c to the catalog inside tx, rejecting duplicate
// names.
func insertComponentType(tx *sql.Tx, c *types.ComponentType) (int64, error) {
	var dupID int64
	err := tx.QueryRow("SELECT component_type_id FROM component_types WHERE name = ?", c.Name).Scan(&dupID)
	if err == nil {
		return 0, fmt.Errorf("component type %q: %w", c.Name, types.ErrDuplicateName)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("checking component type name uniqueness: %w", err)
	}

	res, err := tx.Exec(
		"INSERT INTO component_types (name, description, category, max_per_box) VALUES (?, ?, ?, ?)",
		c.Name, c.Description, c.Category, c.MaxPerBox,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting component type: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading component type id: %w", err)
	}
	return id, nil
}

// Delete removes a component type that no box holds.
// Returns ErrInUse while any ledger entry references it.
func (ct *componentTypesTable) Delete(id string) error {
	typeID, err := types.ParseID(id)
	if err != nil {
		return err
	}
	db, err := ct.backend.acquire()
	if err != nil {
		return err
	}
	defer ct.backend.release()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getComponentType(context.Background(), tx, typeID, ct.backend.dialect.lockRows); err != nil {
		return err
	}

	var refs int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM box_components WHERE component_type_id = ?", typeID,
	).Scan(&refs); err != nil {
		return fmt.Errorf("counting component type references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("component type %d held in %d boxes: %w", typeID, refs, types.ErrInUse)
	}

	if _, err := tx.Exec("DELETE FROM component_types WHERE component_type_id = ?", typeID); err != nil {
		return fmt.Errorf("deleting component type: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing component type deletion: %w", err)
	}
	return nil
}

// Fetch returns component types ordered by name. Supported filters are
// "category" and "name", both exact string matches.
func (ct *componentTypesTable) Fetch(filter map[string]any) ([]any, error) {
	query := selectComponentType
	var conditions []string
	var args []any

	for _, key := range []string{"category", "name"} {
		v, ok := filter[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, key+" = ?")
		args = append(args, s)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"

	db, err := ct.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer ct.backend.release()

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching component types: %w", err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		c, err := hydrateComponentType(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning component type: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func hydrateComponentType(row scanner) (*types.ComponentType, error) {
	var c types.ComponentType
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.MaxPerBox); err != nil {
		return nil, err
	}
	return &c, nil
}
