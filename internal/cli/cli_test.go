package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

const (
	kitA        = "Raspberry Pi Pico Kit A"
	electronics = "Electronics Components"
	redLED      = "LED 5mm Red" // max 10
)

// testEnv isolates config and data directories for one test.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

type result struct {
	stdout string
	stderr string
	code   int
}

// run executes kitbox with the env's directories prepended.
func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(root, full, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.code, "kitbox %v: %s", args, r.stderr)
	return r.stdout
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("version")
	assert.Contains(t, out, "kitbox v")
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("init")
	assert.Contains(t, out, "kitbox initialized successfully")

	cfgPath := filepath.Join(e.configDir, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.FileExists(t, filepath.Join(e.dataDir, "kitbox.db"))

	// A second init leaves the config alone.
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: sqlite\nseed: false\n"), 0o644))
	info := decode[map[string]any](t, e.mustRun("--json", "init"))
	assert.Equal(t, false, info["config_created"])
	data, err = os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "backend: sqlite\nseed: false\n", string(data))
}

func TestFirstAttachSeedsCatalog(t *testing.T) {
	e := newTestEnv(t)
	list := decode[[]types.ComponentType](t, e.mustRun("--json", "component", "list"))
	assert.Len(t, list, 48)

	motors := decode[[]types.ComponentType](t, e.mustRun("--json", "component", "list", "--category", "Motors"))
	assert.NotEmpty(t, motors)
	for _, ct := range motors {
		assert.Equal(t, "Motors", ct.Category)
	}
}

func TestSeedDisabledByEnv(t *testing.T) {
	t.Setenv("KITBOX_SEED", "false")
	e := newTestEnv(t)
	list := decode[[]types.ComponentType](t, e.mustRun("--json", "component", "list"))
	assert.Empty(t, list)
}

func TestLedgerCommands(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("seed", "--reset", "--with-inventory")

	out := e.mustRun("add", kitA, redLED, "5")
	assert.Contains(t, out, "Added 5 LED 5mm Red(s) to "+kitA)

	r := e.run("add", kitA, redLED, "1")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, types.ErrCapacityExceeded.Error())

	r = e.run("transfer", kitA, electronics, redLED, "1")
	assert.Equal(t, exitUserError, r.code, "electronics already holds the maximum")

	m := decode[types.Movement](t, e.mustRun("--json", "remove", kitA, redLED, "4"))
	assert.Equal(t, 10, m.FromBefore)
	assert.Equal(t, 6, m.FromAfter)

	r = e.run("remove", kitA, redLED, "7")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, types.ErrInsufficientQuantity.Error())

	view := decode[boxView](t, e.mustRun("--json", "box", "show", kitA))
	for _, it := range view.Components {
		if it.Name == redLED {
			assert.Equal(t, 6, it.Quantity)
		}
	}
}

func TestTransferByID(t *testing.T) {
	t.Setenv("KITBOX_SEED", "false")
	e := newTestEnv(t)

	a := decode[types.Box](t, e.mustRun("--json", "box", "create", "Drawer 1"))
	b := decode[types.Box](t, e.mustRun("--json", "box", "create", "Drawer 2", "-d", "spares"))
	ct := decode[types.ComponentType](t, e.mustRun("--json", "component", "create", "Relay", "--max", "3", "-c", "Actuators"))

	e.mustRun("add", types.FormatID(a.ID), types.FormatID(ct.ID), "2")
	m := decode[types.Movement](t, e.mustRun("--json", "transfer",
		types.FormatID(a.ID), types.FormatID(b.ID), types.FormatID(ct.ID), "2"))
	assert.Equal(t, 0, m.FromAfter)
	assert.Equal(t, 2, m.ToAfter)

	r := e.run("transfer", "Drawer 2", "Drawer 2", "Relay", "1")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, types.ErrSameBoxTransfer.Error())

	view := decode[boxView](t, e.mustRun("--json", "box", "show", "Drawer 1"))
	assert.Empty(t, view.Components)
}

func TestUserErrors(t *testing.T) {
	t.Setenv("KITBOX_SEED", "false")
	e := newTestEnv(t)
	e.mustRun("box", "create", "Drawer")
	e.mustRun("component", "create", "Relay", "--max", "3")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown box", []string{"add", "Nope", "Relay", "1"}},
		{"unknown component", []string{"add", "Drawer", "Nope", "1"}},
		{"bad quantity", []string{"add", "Drawer", "Relay", "two"}},
		{"zero quantity", []string{"add", "Drawer", "Relay", "0"}},
		{"missing args", []string{"add", "Drawer"}},
		{"unknown flag", []string{"box", "list", "--nope"}},
		{"duplicate box", []string{"box", "create", "Drawer"}},
		{"missing capacity", []string{"component", "create", "Diode"}},
		{"remove absent", []string{"remove", "Drawer", "Relay", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.run(tt.args...)
			assert.Equal(t, exitUserError, r.code, r.stderr)
			assert.NotEmpty(t, r.stderr)
		})
	}
}

func TestNegativeQuantity(t *testing.T) {
	t.Setenv("KITBOX_SEED", "false")
	e := newTestEnv(t)
	e.mustRun("box", "create", "Drawer")
	e.mustRun("component", "create", "Relay", "--max", "3")

	r := e.run("add", "Drawer", "Relay", "-1")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "use -- before a negative quantity")

	r = e.run("add", "--", "Drawer", "Relay", "-1")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, types.ErrInvalidQuantity.Error())
}

func TestBoxListAndDelete(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("seed", "--reset", "--with-inventory")

	per := decode[[]types.BoxSummary](t, e.mustRun("--json", "box", "list"))
	require.Len(t, per, 5)

	out := e.mustRun("box", "list")
	assert.Contains(t, out, kitA)

	e.mustRun("box", "delete", kitA)
	per = decode[[]types.BoxSummary](t, e.mustRun("--json", "box", "list"))
	assert.Len(t, per, 4)

	r := e.run("box", "show", kitA)
	assert.Equal(t, exitUserError, r.code)
}

func TestSearch(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("seed", "--reset", "--with-inventory")

	hits := decode[[]types.SearchHit](t, e.mustRun("--json", "search", "led 5mm"))
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, redLED, h.ComponentName)
	}

	out := e.mustRun("search", "unobtainium")
	assert.Contains(t, out, "No components matching")
}

func TestSeed(t *testing.T) {
	e := newTestEnv(t)

	rep := decode[seedReport](t, e.mustRun("--json", "seed", "--with-inventory"))
	assert.Equal(t, 48, rep.ComponentTypes)
	assert.Equal(t, 5, rep.Boxes)
	assert.Equal(t, 29, rep.Stock)
	assert.Equal(t, 29, rep.Summary.Entries)

	// Without --reset a populated catalog is kept.
	rep = decode[seedReport](t, e.mustRun("--json", "seed"))
	assert.Zero(t, rep.ComponentTypes)
	assert.Equal(t, 29, rep.Summary.Entries)

	rep = decode[seedReport](t, e.mustRun("--json", "seed", "--reset"))
	assert.Equal(t, 48, rep.ComponentTypes)
	assert.Zero(t, rep.Summary.Entries)
}

func TestSeedCustomCatalog(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[component]]
name = "Stepper 28BYJ-48"
category = "Motors"
max_per_box = 2

[[box]]
name = "Shelf"

[[stock]]
box = "Shelf"
component = "Stepper 28BYJ-48"
quantity = 2
`), 0o644))

	rep := decode[seedReport](t, e.mustRun("--json", "seed", "--catalog", path, "--with-inventory"))
	assert.Equal(t, 1, rep.ComponentTypes)
	assert.Equal(t, 1, rep.Boxes)
	assert.Equal(t, 1, rep.Stock)

	r := e.run("seed", "--catalog", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, exitUserError, r.code)
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	src.mustRun("seed", "--reset", "--with-inventory")

	snap := t.TempDir()
	xlsx := filepath.Join(t.TempDir(), "inventory.xlsx")
	out := src.mustRun("export", snap, "--xlsx", xlsx)
	assert.Contains(t, out, "Exported 5 boxes, 48 component types, 29 entries")
	assert.FileExists(t, filepath.Join(snap, "boxes.jsonl"))
	assert.FileExists(t, xlsx)

	dst := newTestEnv(t)
	res := decode[map[string]int](t, dst.mustRun("--json", "import", snap))
	assert.Equal(t, 5, res["boxes"])
	assert.Equal(t, 48, res["component_types"])
	assert.Equal(t, 29, res["entries"])
	assert.Zero(t, res["skipped"])

	sum := decode[types.Summary](t, dst.mustRun("--json", "summary"))
	assert.Equal(t, 29, sum.Entries)

	r := dst.run("import", snap)
	assert.Equal(t, exitUserError, r.code, "import refuses a populated store")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(fmt.Errorf("box: %w", types.ErrNotFound)))
	assert.Equal(t, exitUserError, exitCode(&types.LedgerError{Err: types.ErrCapacityExceeded}))
	assert.Equal(t, exitUserError, exitCode(userError(errors.New("usage"))))
	assert.Equal(t, exitSysError, exitCode(errors.New("disk on fire")))
}
