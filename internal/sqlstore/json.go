// JSON record structures for snapshot export and import. Each structure is
// one line of its JSONL file; unknown fields are ignored on import.
package sqlstore

// Snapshot file names, in load order: ledger entries reference both of the
// other files.
const (
	boxesFile          = "boxes.jsonl"
	componentTypesFile = "component_types.jsonl"
	entriesFile        = "box_components.jsonl"
)

// boxJSON represents a box in boxes.jsonl.
type boxJSON struct {
	BoxID       int64  `json:"box_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// componentTypeJSON represents a component type in component_types.jsonl.
type componentTypeJSON struct {
	ComponentTypeID int64  `json:"component_type_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	MaxPerBox       int    `json:"max_per_box"`
}

// entryJSON represents a ledger entry in box_components.jsonl.
type entryJSON struct {
	EntryID         int64  `json:"entry_id"`
	BoxID           int64  `json:"box_id"`
	ComponentTypeID int64  `json:"component_type_id"`
	Quantity        int    `json:"quantity"`
	LastUpdated     string `json:"last_updated"`
}
