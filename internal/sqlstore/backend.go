// Package sqlstore implements the database/sql storage backend for kitbox.
// The same code drives SQLite (the default, a single file in DataDir) and
// MySQL; the differences live in dialect.go and schema.go.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// Backend implements the Inventory interface on a relational store.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dialect  dialect
	db       *sql.DB
	tables   map[string]types.Table
	ledger   *ledger
}

var _ types.Inventory = (*Backend)(nil)

// NewBackend creates a new backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]types.Table),
	}
}

// GetTable returns a Table interface for the specified table name.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Ledger returns the inventory ledger.
// Returns ErrDetached if the backend is not attached.
func (b *Backend) Ledger() (types.Ledger, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.ledger, nil
}

// Attach opens the database described by config, creates the schema if it
// does not exist, and seeds the built-in catalog when config.Seed is set and
// the catalog is empty.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	d := dialects[config.Backend]
	db, err := d.open(config)
	if err != nil {
		return err
	}

	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if config.Seed {
		if _, err := seedCatalog(context.Background(), db, BuiltInCatalog(), false); err != nil {
			db.Close()
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.dialect = d
	b.attached = true

	b.tables[types.TableBoxes] = &boxesTable{backend: b}
	b.tables[types.TableComponentTypes] = &componentTypesTable{backend: b}
	b.ledger = &ledger{backend: b}

	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.tables = make(map[string]types.Table)
	b.ledger = nil

	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// acquire takes the read side of the lifecycle lock and returns the open
// database. The caller must call release when done.
func (b *Backend) acquire() (*sql.DB, error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrDetached
	}
	return b.db, nil
}

func (b *Backend) release() {
	b.mu.RUnlock()
}
