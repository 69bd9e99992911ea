package types

// Standard table names for Inventory.GetTable.
const (
	TableBoxes          = "boxes"
	TableComponentTypes = "component_types"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableBoxes,
	TableComponentTypes,
}
