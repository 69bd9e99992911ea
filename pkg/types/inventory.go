package types

import "errors"

// Inventory defines the interface for backend-agnostic storage access.
// Callers attach to a backend, access the catalog and box tables by name and
// the ledger directly, and detach when done.
type Inventory interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Ledger returns the inventory ledger bound to this backend.
	Ledger() (Ledger, error)

	// Attach connects the Inventory to the backend described by config.
	// Creates the schema on first run. Returns ErrAlreadyAttached if called
	// while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrDetached.
	Detach() error
}

// Inventory lifecycle errors.
var (
	ErrDetached        = errors.New("inventory is detached")
	ErrAlreadyAttached = errors.New("inventory is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
