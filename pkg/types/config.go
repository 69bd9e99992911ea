package types

import "errors"

// Config holds backend selection and parameters for Inventory.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DSN is the data source name for network backends (mysql).
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`

	// Seed loads the built-in catalog and boxes when the catalog is empty.
	Seed bool `json:"seed" yaml:"seed"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDSNRequired    = errors.New("dsn is required for this backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMySQL:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendMySQL && c.DSN == "" {
		return ErrDSNRequired
	}
	return nil
}
