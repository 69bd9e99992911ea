package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kitbox/internal/paths"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "KITBOX"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyDSN         = "dsn"
	cfgKeySeed        = "seed"
	cfgKeyListen      = "listen"
	cfgKeyCORSOrigins = "cors_origins"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"

	defaultListen = ":5000"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir,omitempty"`
	Seed      bool   `yaml:"seed"`
	Listen    string `yaml:"listen"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; defaults and KITBOX_* environment variables still apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySeed, true)
	v.SetDefault(cfgKeyListen, defaultListen)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, "console")
	v.SetDefault(cfgKeyCORSOrigins, []string{})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// storeConfig builds the backend configuration from flags and config.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
		DSN:     a.config.GetString(cfgKeyDSN),
		Seed:    a.config.GetBool(cfgKeySeed),
	}, nil
}

// corsOrigins accepts either a YAML list or a comma-separated env value.
func (a *app) corsOrigins() []string {
	var out []string
	for _, o := range a.config.GetStringSlice(cfgKeyCORSOrigins) {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := configFile{
		Backend:   types.BackendSQLite,
		DataDir:   dataDir,
		Seed:      true,
		Listen:    defaultListen,
		LogLevel:  "info",
		LogFormat: "console",
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
