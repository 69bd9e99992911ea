package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// attachBackend opens the configured store. The caller must defer
// backend.Detach(). With noSeed the built-in catalog is not loaded on
// attach, whatever the config says.
func (a *app) attachBackend(noSeed bool) (*kitbox.Backend, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	if noSeed {
		cfg.Seed = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, userError(fmt.Errorf("config: %w", err))
	}

	backend := kitbox.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}

// withBackend attaches, runs fn, and detaches.
func (a *app) withBackend(fn func(b *kitbox.Backend) error) error {
	return a.runAttached(false, fn)
}

// withUnseededBackend is withBackend for commands that fill the store
// themselves.
func (a *app) withUnseededBackend(fn func(b *kitbox.Backend) error) error {
	return a.runAttached(true, fn)
}

func (a *app) runAttached(noSeed bool, fn func(b *kitbox.Backend) error) error {
	b, err := a.attachBackend(noSeed)
	if err != nil {
		return err
	}
	defer b.Detach()
	return fn(b)
}

// resolveBox finds a box by numeric id or exact name.
func resolveBox(inv types.Inventory, ref string) (*types.Box, error) {
	tbl, err := inv.GetTable(types.TableBoxes)
	if err != nil {
		return nil, err
	}
	got, err := lookup(tbl, ref)
	if err != nil {
		return nil, fmt.Errorf("box %q: %w", ref, err)
	}
	return got.(*types.Box), nil
}

// resolveComponentType finds a component type by numeric id or exact name.
func resolveComponentType(inv types.Inventory, ref string) (*types.ComponentType, error) {
	tbl, err := inv.GetTable(types.TableComponentTypes)
	if err != nil {
		return nil, err
	}
	got, err := lookup(tbl, ref)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", ref, err)
	}
	return got.(*types.ComponentType), nil
}

func lookup(tbl types.Table, ref string) (any, error) {
	ref = strings.TrimSpace(ref)
	if _, err := types.ParseID(ref); err == nil {
		got, err := tbl.Get(ref)
		if err == nil || !errors.Is(err, types.ErrNotFound) {
			return got, err
		}
	}
	rows, err := tbl.Fetch(map[string]any{"name": ref})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	return rows[0], nil
}

// parseQuantity reads a quantity argument. Range checks are left to the
// ledger so the error matches the other entry points.
func parseQuantity(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, userError(fmt.Errorf("quantity %q is not an integer", arg))
	}
	return n, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// emit prints v as JSON in --json mode, otherwise runs text.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), v)
	}
	text(cmd.OutOrStdout())
	return nil
}
