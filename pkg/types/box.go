package types

import "time"

// Box is a named physical container of components.
type Box struct {
	ID          int64     `json:"id" toml:"-"`
	Name        string    `json:"name" toml:"name"`
	Description string    `json:"description" toml:"description"`
	CreatedAt   time.Time `json:"created_at" toml:"-"`
}

// Validate checks the fields required to create or update a box.
func (b *Box) Validate() error {
	if b.Name == "" {
		return ErrInvalidName
	}
	return nil
}
