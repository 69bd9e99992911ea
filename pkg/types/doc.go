// Package types defines the Inventory, Table, and Ledger interfaces, the
// catalog, box, and inventory entry entities, the ledger arithmetic shared by
// every backend, and the standard error values for kitbox.
package types
