// Package config loads deskkit settings from a TOML file and DESKKIT_*
// environment variables.
//
// Precedence, lowest to highest: built-in defaults, the config file,
// environment variables. Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	[server]
//	addr = ":3000"
//	max_upload_mb = 50
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/deskkit/pkg/errors"
)

// AppName names the XDG directories and the environment prefix.
const AppName = "deskkit"

const envPrefix = "DESKKIT_"

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the full configuration tree.
type Config struct {
	Server  Server  `toml:"server"`
	Store   Store   `toml:"store"`
	History History `toml:"history"`
	Image   Image   `toml:"image"`
}

// Server configures the HTTP upload/convert backend.
type Server struct {
	Addr           string   `toml:"addr"`
	UploadDir      string   `toml:"upload_dir"`
	MaxUploadMB    int64    `toml:"max_upload_mb"`
	Converter      string   `toml:"converter"`
	ConvertTimeout Duration `toml:"convert_timeout"`
}

// Store selects and configures the key-value backend for history and vault.
type Store struct {
	Backend         string `toml:"backend"`
	Path            string `toml:"path"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	Namespace       string `toml:"namespace"`
}

// History configures capped history lists.
type History struct {
	Limit int `toml:"limit"`
}

// Image holds encoder defaults.
type Image struct {
	JPEGQuality   int    `toml:"jpeg_quality"`
	DefaultFormat string `toml:"default_format"`
}

// Duration is a time.Duration that decodes from strings like "2m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":3000",
			UploadDir:      "uploads",
			MaxUploadMB:    50,
			Converter:      "soffice",
			ConvertTimeout: Duration{2 * time.Minute},
		},
		Store: Store{
			Backend:         BackendFile,
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   AppName,
			MongoCollection: "kv",
		},
		History: History{Limit: 10},
		Image:   Image{JPEGQuality: 85, DefaultFormat: "png"},
	}
}

// Load reads path (or the default location when path is empty), applies
// environment overrides and validates the result. A missing default file is
// not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if dir, err := ConfigDir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case os.IsNotExist(err) && !explicit:
			cfg = Default()
		case os.IsNotExist(err):
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		default:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults. Environment variables are
// not consulted.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and fills in derived defaults.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendNone:
	case "":
		c.Store.Backend = BackendFile
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (must be file, memory, redis, mongo or none)", c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.Path == "" {
		dir, err := DataDir()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve data directory")
		}
		c.Store.Path = filepath.Join(dir, "store")
	}
	if c.History.Limit <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "history limit must be positive, got %d", c.History.Limit)
	}
	if c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "jpeg_quality must be between 1 and 100, got %d", c.Image.JPEGQuality)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.ConvertTimeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "convert_timeout must be positive")
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (s Server) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// applyEnv overrides fields from DESKKIT_<SECTION>_<KEY> variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", envPrefix, key)
			}
			*dst = n
		}
		return nil
	}

	str("SERVER_ADDR", &c.Server.Addr)
	str("SERVER_UPLOAD_DIR", &c.Server.UploadDir)
	str("SERVER_CONVERTER", &c.Server.Converter)
	if v, ok := lookup(envPrefix + "SERVER_MAX_UPLOAD_MB"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sSERVER_MAX_UPLOAD_MB", envPrefix)
		}
		c.Server.MaxUploadMB = n
	}
	if v, ok := lookup(envPrefix + "SERVER_CONVERT_TIMEOUT"); ok {
		if err := c.Server.ConvertTimeout.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sSERVER_CONVERT_TIMEOUT", envPrefix)
		}
	}

	str("STORE_BACKEND", &c.Store.Backend)
	str("STORE_PATH", &c.Store.Path)
	str("STORE_REDIS_ADDR", &c.Store.RedisAddr)
	str("STORE_REDIS_PASSWORD", &c.Store.RedisPassword)
	str("STORE_MONGO_URI", &c.Store.MongoURI)
	str("STORE_MONGO_DATABASE", &c.Store.MongoDatabase)
	str("STORE_MONGO_COLLECTION", &c.Store.MongoCollection)
	str("STORE_NAMESPACE", &c.Store.Namespace)
	if err := integer("STORE_REDIS_DB", &c.Store.RedisDB); err != nil {
		return err
	}

	if err := integer("HISTORY_LIMIT", &c.History.Limit); err != nil {
		return err
	}
	if err := integer("IMAGE_JPEG_QUALITY", &c.Image.JPEGQuality); err != nil {
		return err
	}
	str("IMAGE_DEFAULT_FORMAT", &c.Image.DefaultFormat)
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// ConfigDir returns the configuration directory using the XDG standard
// (~/.config/deskkit/).
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the data directory using the XDG standard
// (~/.local/share/deskkit/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
