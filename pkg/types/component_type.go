package types

// ComponentType is a catalog entry describing a kind of part and the most
// units of it any single box may hold.
type ComponentType struct {
	ID          int64  `json:"id" toml:"-"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
	Category    string `json:"category" toml:"category"`
	MaxPerBox   int    `json:"max_per_box" toml:"max_per_box"`
}

// Validate checks the fields required to create a component type.
func (c *ComponentType) Validate() error {
	if c.Name == "" {
		return ErrInvalidName
	}
	if c.MaxPerBox <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}
