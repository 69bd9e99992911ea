// This file provides JSONL read/write helpers with atomic persistence and
// the snapshot export built on them.
package sqlstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped and counted.
func readJSONL(path string) ([]json.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// marshalRecords encodes each value as one compact JSON line.
func marshalRecords[T any](values []T) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		records = append(records, data)
	}
	return records, nil
}

// ExportResult describes a written snapshot.
type ExportResult struct {
	SnapshotID     string    `json:"snapshot_id"`
	ExportedAt     time.Time `json:"exported_at"`
	Dir            string    `json:"dir"`
	Boxes          int       `json:"boxes"`
	ComponentTypes int       `json:"component_types"`
	Entries        int       `json:"entries"`
}

// snapshot is every row of the store, read in one transaction.
type snapshot struct {
	boxes          []boxJSON
	componentTypes []componentTypeJSON
	entries        []entryJSON
}

// Export writes boxes.jsonl, component_types.jsonl, and box_components.jsonl
// into dir. Each file is replaced atomically.
func (b *Backend) Export(ctx context.Context, dir string) (*ExportResult, error) {
	snap, err := b.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	files := []struct {
		name   string
		encode func() ([]json.RawMessage, error)
	}{
		{boxesFile, func() ([]json.RawMessage, error) { return marshalRecords(snap.boxes) }},
		{componentTypesFile, func() ([]json.RawMessage, error) { return marshalRecords(snap.componentTypes) }},
		{entriesFile, func() ([]json.RawMessage, error) { return marshalRecords(snap.entries) }},
	}
	for _, f := range files {
		records, err := f.encode()
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.name, err)
		}
		if err := writeJSONL(filepath.Join(dir, f.name), records); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating snapshot id: %w", err)
	}
	return &ExportResult{
		SnapshotID:     id.String(),
		ExportedAt:     now(),
		Dir:            dir,
		Boxes:          len(snap.boxes),
		ComponentTypes: len(snap.componentTypes),
		Entries:        len(snap.entries),
	}, nil
}

func (b *Backend) readSnapshot(ctx context.Context) (*snapshot, error) {
	db, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	var snap snapshot

	rows, err := tx.QueryContext(ctx, "SELECT box_id, name, description, created_at FROM boxes ORDER BY box_id")
	if err != nil {
		return nil, fmt.Errorf("reading boxes: %w", err)
	}
	for rows.Next() {
		var r boxJSON
		if err := rows.Scan(&r.BoxID, &r.Name, &r.Description, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning box: %w", err)
		}
		snap.boxes = append(snap.boxes, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx,
		"SELECT component_type_id, name, description, category, max_per_box FROM component_types ORDER BY component_type_id")
	if err != nil {
		return nil, fmt.Errorf("reading component types: %w", err)
	}
	for rows.Next() {
		var r componentTypeJSON
		if err := rows.Scan(&r.ComponentTypeID, &r.Name, &r.Description, &r.Category, &r.MaxPerBox); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning component type: %w", err)
		}
		snap.componentTypes = append(snap.componentTypes, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx, selectEntry+" ORDER BY entry_id")
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	for rows.Next() {
		var r entryJSON
		if err := rows.Scan(&r.EntryID, &r.BoxID, &r.ComponentTypeID, &r.Quantity, &r.LastUpdated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		snap.entries = append(snap.entries, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &snap, nil
}
