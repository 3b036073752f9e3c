package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gclm/flowgraph/internal/server"
	"github.com/gclm/flowgraph/pkg/cache"
	"github.com/gclm/flowgraph/pkg/pipeline"
	"github.com/gclm/flowgraph/pkg/source"
)

// Source kinds accepted in [source] kind.
const (
	sourceDir   = "dir"
	sourceHTTP  = "http"
	sourceMongo = "mongo"
	sourceNone  = "none"
)

// Cache backends accepted in [cache] backend.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Config is the contents of config.toml. Command-line flags override it.
type Config struct {
	Server ServerConfig `toml:"server"`
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
}

type ServerConfig struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// SourceConfig selects where "task" and "serve" look up workflow
// definitions by type.
type SourceConfig struct {
	Kind       string        `toml:"kind"`
	Dir        string        `toml:"dir"`
	URL        string        `toml:"url"`
	MongoURI   string        `toml:"mongo_uri"`
	Database   string        `toml:"database"`
	Collection string        `toml:"collection"`
	CacheTTL   time.Duration `toml:"cache_ttl"`
}

type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	TTL           time.Duration `toml:"ttl"`
	// Prefix scopes every cache key, so several deployments can share one
	// cache without colliding.
	Prefix string `toml:"prefix"`
}

type RenderConfig struct {
	Size      string `toml:"size"`
	Format    string `toml:"format"`
	Direction string `toml:"direction"`
	Detailed  bool   `toml:"detailed"`
}

// DefaultConfig is used when no config file exists. Keys missing from a
// config file keep these values.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           server.DefaultAddr,
			RequestTimeout: 30 * time.Second,
		},
		Source: SourceConfig{
			Kind:     sourceDir,
			Dir:      "workflows",
			CacheTTL: cache.WorkflowTTL,
		},
		Cache: CacheConfig{
			Backend: cacheFile,
			TTL:     cache.ArtifactTTL,
		},
		Render: RenderConfig{
			Size:   pipeline.DefaultSize,
			Format: pipeline.DefaultFormat,
		},
	}
}

// LoadConfig reads the config file at path. An empty path means the default
// location, where a missing file silently yields DefaultConfig; a missing
// file at an explicit path is an error. Unknown keys are rejected so typos
// do not go unnoticed.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and the settings each kind needs.
func (c Config) Validate() error {
	switch c.Source.Kind {
	case sourceDir:
		if c.Source.Dir == "" {
			return errors.New("source.dir is required for kind \"dir\"")
		}
	case sourceHTTP:
		if c.Source.URL == "" {
			return errors.New("source.url is required for kind \"http\"")
		}
	case sourceMongo:
		if c.Source.MongoURI == "" {
			return errors.New("source.mongo_uri is required for kind \"mongo\"")
		}
	case sourceNone, "":
	default:
		return fmt.Errorf("source.kind: unknown kind %q (must be dir, http, mongo or none)", c.Source.Kind)
	}

	switch c.Cache.Backend {
	case cacheFile, cacheNone, "":
	case cacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for backend \"redis\"")
		}
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (must be file, redis or none)", c.Cache.Backend)
	}

	if c.Render.Size != "" {
		if err := pipeline.ValidateSize(c.Render.Size); err != nil {
			return err
		}
	}
	if c.Render.Format != "" {
		if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
			return err
		}
	}
	return nil
}

// newSource builds the workflow source named in cfg. It returns nil for
// kind "none", which makes every task render fall back. Remote sources are
// wrapped in a cache so repeated lookups during watch or serve stay cheap.
func newSource(ctx context.Context, cfg SourceConfig, c cache.Cache, k cache.Keyer) (source.Source, error) {
	var src source.Source
	switch cfg.Kind {
	case sourceDir:
		src = source.NewDirSource(cfg.Dir)
	case sourceHTTP:
		hs, err := source.NewHTTPSource(cfg.URL)
		if err != nil {
			return nil, err
		}
		src = hs
	case sourceMongo:
		ms, err := source.NewMongoSource(ctx, source.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, err
		}
		src = ms
	default:
		return nil, nil
	}

	if cfg.Kind == sourceDir || c == nil {
		return src, nil
	}
	cached := source.NewCached(src, c)
	if k != nil {
		cached.Keyer = k
	}
	if cfg.CacheTTL > 0 {
		cached.TTL = cfg.CacheTTL
	}
	return cached, nil
}

// newKeyer returns the keyer for cfg, or nil for the default one.
func newKeyer(cfg CacheConfig) cache.Keyer {
	if cfg.Prefix == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, cfg.Prefix)
}

// newCache builds the artifact cache. noCache and backend "none" both give
// a null cache.
func newCache(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// configDir returns the config directory using XDG standard (~/.config/flowgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
