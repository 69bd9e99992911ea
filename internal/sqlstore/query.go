// This file implements the read-only ledger views: box contents, search,
// and the inventory summary.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// BoxContents lists the entries of a box joined with their component types,
// ordered by component name. An unknown box yields an empty list.
func (l *ledger) BoxContents(ctx context.Context, boxID int64) ([]types.BoxItem, error) {
	db, err := l.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer l.backend.release()

	rows, err := db.QueryContext(ctx, `SELECT ct.component_type_id, ct.name, ct.description, ct.category,
       ct.max_per_box, bc.quantity, bc.last_updated
FROM box_components bc
JOIN component_types ct ON ct.component_type_id = bc.component_type_id
WHERE bc.box_id = ?
ORDER BY ct.name`, boxID)
	if err != nil {
		return nil, fmt.Errorf("querying box %d contents: %w", boxID, err)
	}
	defer rows.Close()

	items := []types.BoxItem{}
	for rows.Next() {
		var it types.BoxItem
		var lastUpdated string
		if err := rows.Scan(&it.ComponentTypeID, &it.Name, &it.Description, &it.Category,
			&it.MaxPerBox, &it.Quantity, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scanning box item: %w", err)
		}
		if it.LastUpdated, err = parseTime(lastUpdated, "entry last_updated"); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Search returns every entry whose component name contains query, ignoring
// ASCII case. Wildcards in query match literally. An empty query matches
// nothing.
func (l *ledger) Search(ctx context.Context, query string) ([]types.SearchHit, error) {
	hits := []types.SearchHit{}
	if query == "" {
		return hits, nil
	}

	db, err := l.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer l.backend.release()

	pattern := "%" + escapeLike(asciiLower(query)) + "%"
	rows, err := db.QueryContext(ctx, `SELECT ct.component_type_id, ct.name, b.box_id, b.name, bc.quantity
FROM box_components bc
JOIN component_types ct ON ct.component_type_id = bc.component_type_id
JOIN boxes b ON b.box_id = bc.box_id
WHERE LOWER(ct.name) LIKE ? ESCAPE '!'
ORDER BY ct.name, b.name`, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer rows.Close()

	for rows.Next() {
		var h types.SearchHit
		if err := rows.Scan(&h.ComponentTypeID, &h.ComponentName, &h.BoxID, &h.BoxName, &h.Quantity); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// escapeLike makes the LIKE metacharacters in s match literally under
// ESCAPE '!'.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// Summary reports per-box and global counts. Boxes holding nothing are
// listed with zero counts.
func (l *ledger) Summary(ctx context.Context) (*types.Summary, error) {
	db, err := l.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer l.backend.release()

	var s types.Summary
	for _, c := range []struct {
		table string
		dest  *int
	}{
		{"boxes", &s.Boxes},
		{"component_types", &s.ComponentTypes},
		{"box_components", &s.Entries},
	} {
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT b.box_id, b.name, COUNT(bc.entry_id), COALESCE(SUM(bc.quantity), 0)
FROM boxes b
LEFT JOIN box_components bc ON bc.box_id = b.box_id
GROUP BY b.box_id, b.name
ORDER BY b.name`)
	if err != nil {
		return nil, fmt.Errorf("summarizing boxes: %w", err)
	}
	defer rows.Close()

	s.PerBox = []types.BoxSummary{}
	for rows.Next() {
		var bs types.BoxSummary
		if err := rows.Scan(&bs.BoxID, &bs.BoxName, &bs.ComponentTypes, &bs.TotalItems); err != nil {
			return nil, fmt.Errorf("scanning box summary: %w", err)
		}
		s.PerBox = append(s.PerBox, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// asciiLower folds A-Z only, matching SQLite's LOWER().
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}, s)
}
