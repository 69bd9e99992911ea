// Package kitbox provides the public API for creating inventory backends.
// It exposes the factory and seeding helpers while keeping the storage
// implementation internal.
package kitbox

import (
	"github.com/mesh-intelligence/kitbox/internal/sqlstore"
)

// Version is the kitbox release version.
const Version = "0.3.0"

// Backend is the relational inventory backend. It implements
// types.Inventory and adds seeding, snapshot export and import, and the
// XLSX report.
type Backend = sqlstore.Backend

// Catalog is a set of component types, boxes, and stock lines to seed.
type Catalog = sqlstore.Catalog

// StockLine places a quantity of a named component in a named box.
type StockLine = sqlstore.StockLine

// ExportResult describes a written snapshot.
type ExportResult = sqlstore.ExportResult

// ErrStoreNotEmpty is returned by Backend.Import when the store already
// holds data.
var ErrStoreNotEmpty = sqlstore.ErrStoreNotEmpty

// NewBackend creates a new backend instance. The backend is not attached;
// call Attach with a Config to initialize.
//
// Example:
//
//	backend := kitbox.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".kitbox",
//	})
//	defer backend.Detach()
func NewBackend() *Backend {
	return sqlstore.NewBackend()
}

// BuiltInCatalog returns the Raspberry Pi Pico kit catalog.
func BuiltInCatalog() *Catalog {
	return sqlstore.BuiltInCatalog()
}

// LoadCatalog reads a catalog from a TOML file.
func LoadCatalog(path string) (*Catalog, error) {
	return sqlstore.LoadCatalog(path)
}
