// This file implements snapshot import. Unknown fields in records are
// ignored so snapshots stay loadable across versions.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrStoreNotEmpty is returned by Import when the store already holds data.
var ErrStoreNotEmpty = errors.New("store is not empty")

// ImportResult counts the records loaded and skipped per file.
type ImportResult struct {
	Boxes          int `json:"boxes"`
	ComponentTypes int `json:"component_types"`
	Entries        int `json:"entries"`
	Skipped        int `json:"skipped"`
}

// Import loads a snapshot written by Export into an empty store, in one
// transaction. Malformed lines, records failing validation, and ledger
// entries with missing references or quantities outside 1..max_per_box
// are skipped and counted. Missing files load as empty.
func (b *Backend) Import(ctx context.Context, dir string) (*ImportResult, error) {
	var res ImportResult

	boxes, skipped, err := decodeFile[boxJSON](dir, boxesFile)
	if err != nil {
		return nil, err
	}
	res.Skipped += skipped
	cts, skipped, err := decodeFile[componentTypeJSON](dir, componentTypesFile)
	if err != nil {
		return nil, err
	}
	res.Skipped += skipped
	entries, skipped, err := decodeFile[entryJSON](dir, entriesFile)
	if err != nil {
		return nil, err
	}
	res.Skipped += skipped

	db, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"boxes", "component_types", "box_components"} {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		if n > 0 {
			return nil, fmt.Errorf("%s has %d rows: %w", table, n, ErrStoreNotEmpty)
		}
	}

	boxIDs := make(map[int64]bool, len(boxes))
	boxNames := make(map[string]bool, len(boxes))
	for _, r := range boxes {
		name := strings.TrimSpace(r.Name)
		if r.BoxID <= 0 || name == "" || boxIDs[r.BoxID] || boxNames[name] {
			res.Skipped++
			continue
		}
		createdAt := r.CreatedAt
		if _, err := time.Parse(time.RFC3339, createdAt); err != nil {
			createdAt = formatTime(now())
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO boxes (box_id, name, description, created_at) VALUES (?, ?, ?, ?)",
			r.BoxID, name, r.Description, createdAt,
		); err != nil {
			return nil, fmt.Errorf("importing box %d: %w", r.BoxID, err)
		}
		boxIDs[r.BoxID] = true
		boxNames[name] = true
		res.Boxes++
	}

	maxPerBox := make(map[int64]int, len(cts))
	typeNames := make(map[string]bool, len(cts))
	for _, r := range cts {
		name := strings.TrimSpace(r.Name)
		_, dupID := maxPerBox[r.ComponentTypeID]
		if r.ComponentTypeID <= 0 || name == "" || r.MaxPerBox <= 0 || dupID || typeNames[name] {
			res.Skipped++
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO component_types (component_type_id, name, description, category, max_per_box) VALUES (?, ?, ?, ?, ?)",
			r.ComponentTypeID, name, r.Description, r.Category, r.MaxPerBox,
		); err != nil {
			return nil, fmt.Errorf("importing component type %d: %w", r.ComponentTypeID, err)
		}
		maxPerBox[r.ComponentTypeID] = r.MaxPerBox
		typeNames[name] = true
		res.ComponentTypes++
	}

	type pair struct{ box, ct int64 }
	seen := make(map[pair]bool, len(entries))
	for _, r := range entries {
		capacity, ok := maxPerBox[r.ComponentTypeID]
		p := pair{r.BoxID, r.ComponentTypeID}
		if !ok || !boxIDs[r.BoxID] || seen[p] || r.Quantity < 1 || r.Quantity > capacity {
			res.Skipped++
			continue
		}
		lastUpdated := r.LastUpdated
		if _, err := time.Parse(time.RFC3339, lastUpdated); err != nil {
			lastUpdated = formatTime(now())
		}
		// Entry ids are not referenced anywhere, so the store assigns fresh ones.
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO box_components (box_id, component_type_id, quantity, last_updated) VALUES (?, ?, ?, ?)",
			r.BoxID, r.ComponentTypeID, r.Quantity, lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("importing entry for box %d component type %d: %w", r.BoxID, r.ComponentTypeID, err)
		}
		seen[p] = true
		res.Entries++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import transaction: %w", err)
	}
	return &res, nil
}

// decodeFile reads dir/name and decodes each line into T. Lines that are
// not valid JSON or do not fit T are counted as skipped.
func decodeFile[T any](dir, name string) ([]T, int, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	records, skipped, err := readJSONL(path)
	if err != nil {
		return nil, 0, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped, nil
}
