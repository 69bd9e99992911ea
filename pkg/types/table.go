package types

import (
	"errors"
	"strconv"
)

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
// IDs cross this boundary as decimal strings.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new row is
	// inserted and its generated ID is returned.
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter map[string]any) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Entity errors.
var (
	ErrInvalidName     = errors.New("invalid name")
	ErrDuplicateName   = errors.New("name already exists")
	ErrInvalidCapacity = errors.New("max_per_box must be positive")
	ErrImmutable       = errors.New("entity cannot be modified")
	ErrInUse           = errors.New("entity is referenced by inventory")
)

// ParseID converts a Table ID string into a row ID.
// Returns ErrInvalidID for empty, non-numeric, or non-positive values.
func ParseID(id string) (int64, error) {
	if id == "" {
		return 0, ErrInvalidID
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return n, nil
}

// FormatID converts a row ID into its Table ID string.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
