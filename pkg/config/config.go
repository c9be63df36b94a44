// Package config loads astview settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/astview/config.toml (falling back to
// ~/.config/astview/config.toml) unless a path is given explicitly. Every
// key is optional; missing keys keep the values from [Default]. Command-line
// flags are applied on top of the loaded file by the CLI.
//
// Example file:
//
//	[layout]
//	expand_depth = 2
//	max_nodes = 5000
//
//	[source]
//	leaf_text = 40
//
//	[render]
//	formats = ["svg", "txt"]
//	style = "compact"
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//	store = "file"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// AppName names the configuration, cache and data directories.
const AppName = "astview"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// View store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the full configuration file.
type Config struct {
	Layout Layout `toml:"layout"`
	Source Source `toml:"source"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Layout holds geometry and expansion settings.
type Layout struct {
	RowHeight   float64 `toml:"row_height"`
	BoxHeight   float64 `toml:"box_height"`
	MinWidth    float64 `toml:"min_width"`
	CharWidth   float64 `toml:"char_width"`
	Padding     float64 `toml:"padding"`
	ExpandDepth int     `toml:"expand_depth"`
	ExpandAll   bool    `toml:"expand_all"`
	MaxDepth    int     `toml:"max_depth"`
	MaxNodes    int     `toml:"max_nodes"`
	Strict      bool    `toml:"strict"`
}

// Source holds parsing settings.
type Source struct {
	Language  string `toml:"language"`
	LeafText  int    `toml:"leaf_text"`
	Anonymous bool   `toml:"anonymous"`
}

// Render holds output settings.
type Render struct {
	Formats  []string `toml:"formats"`
	Style    string   `toml:"style"`
	FontSize float64  `toml:"font_size"`
	Margin   float64  `toml:"margin"`
	Scale    float64  `toml:"scale"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	URL     string `toml:"url"`
	Prefix  string `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string   `toml:"addr"`
	Store           string   `toml:"store"`
	StoreDir        string   `toml:"store_dir"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	Root            string   `toml:"root"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration that decodes from TOML strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
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
		Layout: Layout{
			RowHeight:   60,
			BoxHeight:   20,
			MinWidth:    8,
			CharWidth:   9,
			Padding:     4,
			ExpandDepth: 2,
		},
		Source: Source{LeafText: 32},
		Render: Render{
			Formats:  []string{"svg"},
			Style:    "span",
			FontSize: 12,
			Margin:   10,
			Scale:    2,
		},
		Cache:  Cache{Backend: CacheFile, Prefix: AppName + ":"},
		Server: Server{
			Addr:            ":8080",
			Store:           StoreMemory,
			MongoDatabase:   AppName,
			ShutdownTimeout: Duration{10 * time.Second},
		},
	}
}

// Load reads the configuration at path over the defaults. An empty path
// selects [DefaultPath]; a missing default file is not an error, a missing
// explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.URL == "" {
		return errors.New("cache.url: required for the redis backend")
	}
	switch c.Server.Store {
	case StoreMemory, StoreFile, StoreMongo:
	default:
		return fmt.Errorf("server.store: unknown store %q", c.Server.Store)
	}
	if c.Server.Store == StoreMongo && c.Server.MongoURI == "" {
		return errors.New("server.mongo_uri: required for the mongo store")
	}
	if c.Layout.ExpandDepth < 0 {
		return fmt.Errorf("layout.expand_depth: must be >= 0, got %d", c.Layout.ExpandDepth)
	}
	return nil
}

// Write encodes the configuration as TOML to path, creating parent
// directories as needed.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/astview/config.toml.
func DefaultPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/astview/).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the data directory using XDG standard (~/.local/share/astview/).
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
