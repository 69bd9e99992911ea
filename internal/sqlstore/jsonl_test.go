package sqlstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

func TestReadJSONLSkipsBlankAndMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n\nnot json\n{\"a\":2}\n"), 0o644))

	records, skipped, err := readJSONL(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, skipped)
}

func TestWriteJSONLAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	require.NoError(t, writeJSONL(path, []json.RawMessage{
		json.RawMessage(`{"a":1}`),
		json.RawMessage(`{"a":2}`),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestExportImportRoundTrip(t *testing.T) {
	src := setupBackend(t)
	ctx := t.Context()
	_, err := src.Seed(ctx, BuiltInCatalog(), false)
	require.NoError(t, err)
	_, err = src.SeedStock(ctx, BuiltInCatalog().Stock)
	require.NoError(t, err)

	dir := t.TempDir()
	exp, err := src.Export(ctx, dir)
	require.NoError(t, err)
	_, err = uuid.Parse(exp.SnapshotID)
	assert.NoError(t, err)
	assert.Equal(t, 5, exp.Boxes)
	assert.Equal(t, 48, exp.ComponentTypes)
	assert.Equal(t, 29, exp.Entries)

	for _, name := range []string{boxesFile, componentTypesFile, entriesFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			assert.True(t, json.Valid([]byte(line)), "%s line is JSON: %s", name, line)
		}
	}

	dst := setupBackend(t)
	imp, err := dst.Import(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Boxes: 5, ComponentTypes: 48, Entries: 29}, imp)

	srcLedger, err := src.Ledger()
	require.NoError(t, err)
	dstLedger, err := dst.Ledger()
	require.NoError(t, err)
	want, err := srcLedger.Summary(ctx)
	require.NoError(t, err)
	got, err := dstLedger.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Imported rows keep their ids, so the ledger keeps working on them.
	items, err := dstLedger.BoxContents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 11)
}

func TestImportRejectsNonEmptyStore(t *testing.T) {
	b := setupBackend(t)
	createBox(t, b, "Existing")

	_, err := b.Import(t.Context(), t.TempDir())
	assert.ErrorIs(t, err, ErrStoreNotEmpty)
}

func TestImportSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, lines ...string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	}
	write(boxesFile,
		`{"box_id":1,"name":"Kit A","description":"","created_at":"2025-01-01T00:00:00Z","future_field":true}`,
		`{"box_id":2,"name":"Kit A"}`,
		`{"box_id":3,"name":""}`,
		`garbage`,
	)
	write(componentTypesFile,
		`{"component_type_id":1,"name":"LED","max_per_box":5}`,
		`{"component_type_id":2,"name":"Broken","max_per_box":0}`,
		`{"component_type_id":"three","name":"Typed wrong","max_per_box":1}`,
	)
	write(entriesFile,
		`{"entry_id":1,"box_id":1,"component_type_id":1,"quantity":3,"last_updated":"2025-01-02T00:00:00Z"}`,
		`{"entry_id":2,"box_id":1,"component_type_id":1,"quantity":1}`,
		`{"entry_id":3,"box_id":9,"component_type_id":1,"quantity":1}`,
		`{"entry_id":4,"box_id":1,"component_type_id":2,"quantity":1}`,
		`{"entry_id":5,"box_id":1,"component_type_id":1,"quantity":0}`,
	)

	b := setupBackend(t)
	res, err := b.Import(t.Context(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Boxes)
	assert.Equal(t, 1, res.ComponentTypes)
	assert.Equal(t, 1, res.Entries)
	// 3 boxes, 2 component types, 4 entries.
	assert.Equal(t, 9, res.Skipped)

	l, err := b.Ledger()
	require.NoError(t, err)
	e, err := l.Get(t.Context(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Quantity)
}

func TestImportOverCapacityEntrySkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, boxesFile),
		[]byte(`{"box_id":1,"name":"Kit A","created_at":"2025-01-01T00:00:00Z"}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, componentTypesFile),
		[]byte(`{"component_type_id":1,"name":"Servo","max_per_box":1}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, entriesFile),
		[]byte(`{"box_id":1,"component_type_id":1,"quantity":2}`+"\n"), 0o644))

	b := setupBackend(t)
	res, err := b.Import(t.Context(), dir)
	require.NoError(t, err)
	assert.Zero(t, res.Entries)
	assert.Equal(t, 1, res.Skipped)

	l, err := b.Ledger()
	require.NoError(t, err)
	_, err = l.Get(t.Context(), 1, 1)
	assert.ErrorIs(t, err, types.ErrEntryNotFound)
}

func TestWriteReport(t *testing.T) {
	f := setupFixture(t)
	_, err := f.l.Add(f.ctx, f.boxA, f.led, 4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	require.NoError(t, f.b.WriteReport(f.ctx, path))

	x, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer x.Close()

	assert.Equal(t, []string{SheetBoxes, SheetComponentTypes, SheetInventory}, x.GetSheetList())

	rows, err := x.GetRows(SheetInventory)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Box", "Component", "Category", "Quantity", "Max Per Box", "Last Updated"}, rows[0])
	assert.Equal(t, []string{"Box A", "LED", "Electronics", "4", "5"}, rows[1][:5])

	boxes, err := x.GetRows(SheetBoxes)
	require.NoError(t, err)
	assert.Len(t, boxes, 3)
}
