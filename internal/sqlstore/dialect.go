package sqlstore

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "kitbox.db"

// dialect captures what differs between the supported SQL engines.
type dialect struct {
	name   string
	schema []string

	// lockRows is appended to SELECTs that read ledger rows inside a
	// mutating transaction.
	lockRows string

	open func(config types.Config) (*sql.DB, error)
}

var dialects = map[string]dialect{
	types.BackendSQLite: {
		name:   types.BackendSQLite,
		schema: sqliteSchemaDDL,
		open:   openSQLite,
	},
	types.BackendMySQL: {
		name:     types.BackendMySQL,
		schema:   mysqlSchemaDDL,
		lockRows: " FOR UPDATE",
		open:     openMySQL,
	},
}

// openSQLite opens DataDir/kitbox.db, creating DataDir if needed. The pool is
// limited to one connection so writers are serialized by database/sql.
func openSQLite(config types.Config) (*sql.DB, error) {
	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	dsn := "file:" + filepath.Join(dataDir, dbFileName) + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// openMySQL opens the configured DSN. parseTime stays off because timestamps
// are stored as RFC 3339 text.
func openMySQL(config types.Config) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.MultiStatements = false
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}
