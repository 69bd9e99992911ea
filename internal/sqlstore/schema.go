package sqlstore

// SQLite DDL. Tables are listed in dependency order.
const (
	sqliteCreateBoxes = `CREATE TABLE IF NOT EXISTS boxes (
    box_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);`

	sqliteCreateComponentTypes = `CREATE TABLE IF NOT EXISTS component_types (
    component_type_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    max_per_box INTEGER NOT NULL CHECK (max_per_box > 0)
);`

	sqliteCreateBoxComponents = `CREATE TABLE IF NOT EXISTS box_components (
    entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
    box_id INTEGER NOT NULL,
    component_type_id INTEGER NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    last_updated TEXT NOT NULL,
    UNIQUE (box_id, component_type_id),
    FOREIGN KEY (box_id) REFERENCES boxes(box_id) ON DELETE CASCADE,
    FOREIGN KEY (component_type_id) REFERENCES component_types(component_type_id)
);`

	sqliteIdxBoxComponentsType = `CREATE INDEX IF NOT EXISTS idx_box_components_type ON box_components(component_type_id);`
)

// MySQL DDL. Names are VARCHAR so they can carry a UNIQUE index.
const (
	mysqlCreateBoxes = `CREATE TABLE IF NOT EXISTS boxes (
    box_id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(100) NOT NULL UNIQUE,
    description TEXT NOT NULL,
    created_at VARCHAR(40) NOT NULL
) ENGINE=InnoDB`

	mysqlCreateComponentTypes = `CREATE TABLE IF NOT EXISTS component_types (
    component_type_id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(100) NOT NULL UNIQUE,
    description TEXT NOT NULL,
    category VARCHAR(50) NOT NULL DEFAULT '',
    max_per_box INT NOT NULL,
    CONSTRAINT chk_max_per_box CHECK (max_per_box > 0)
) ENGINE=InnoDB`

	mysqlCreateBoxComponents = `CREATE TABLE IF NOT EXISTS box_components (
    entry_id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    box_id BIGINT NOT NULL,
    component_type_id BIGINT NOT NULL,
    quantity INT NOT NULL,
    last_updated VARCHAR(40) NOT NULL,
    UNIQUE KEY uq_box_component (box_id, component_type_id),
    KEY idx_box_components_type (component_type_id),
    CONSTRAINT chk_quantity CHECK (quantity > 0),
    CONSTRAINT fk_box_components_box FOREIGN KEY (box_id) REFERENCES boxes(box_id) ON DELETE CASCADE,
    CONSTRAINT fk_box_components_type FOREIGN KEY (component_type_id) REFERENCES component_types(component_type_id)
) ENGINE=InnoDB`
)

var sqliteSchemaDDL = []string{
	sqliteCreateBoxes,
	sqliteCreateComponentTypes,
	sqliteCreateBoxComponents,
	sqliteIdxBoxComponentsType,
}

var mysqlSchemaDDL = []string{
	mysqlCreateBoxes,
	mysqlCreateComponentTypes,
	mysqlCreateBoxComponents,
}
