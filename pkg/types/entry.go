package types

import "time"

// Entry is the quantity of one component type held in one box.
// An entry exists only while Quantity > 0.
type Entry struct {
	ID              int64     `json:"id"`
	BoxID           int64     `json:"box_id"`
	ComponentTypeID int64     `json:"component_type_id"`
	Quantity        int       `json:"quantity"`
	LastUpdated     time.Time `json:"last_updated"`
}

// BoxItem is one row of a box detail view: an entry joined with its
// component type.
type BoxItem struct {
	ComponentTypeID int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	MaxPerBox       int       `json:"max_per_box"`
	Quantity        int       `json:"quantity"`
	LastUpdated     time.Time `json:"last_updated"`
}

// SearchHit is one entry whose component name matched a search query.
type SearchHit struct {
	ComponentTypeID int64  `json:"component_type_id"`
	ComponentName   string `json:"component_name"`
	BoxID           int64  `json:"box_id"`
	BoxName         string `json:"box_name"`
	Quantity        int    `json:"quantity"`
}

// BoxSummary counts what a single box holds.
type BoxSummary struct {
	BoxID          int64  `json:"box_id"`
	BoxName        string `json:"box_name"`
	ComponentTypes int    `json:"component_types"`
	TotalItems     int    `json:"total_items"`
}

// Summary reports inventory totals across all boxes.
type Summary struct {
	Boxes          int          `json:"boxes"`
	ComponentTypes int          `json:"component_types"`
	Entries        int          `json:"entries"`
	PerBox         []BoxSummary `json:"per_box"`
}
