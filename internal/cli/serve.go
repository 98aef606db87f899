package cli

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/labelsmith/labelsmith/internal/server"
	"github.com/labelsmith/labelsmith/pkg/library"
	"github.com/labelsmith/labelsmith/pkg/observability"
	"github.com/labelsmith/labelsmith/pkg/preview"
	"github.com/labelsmith/labelsmith/pkg/render"
	"github.com/labelsmith/labelsmith/pkg/session"
)

// =============================================================================
// Configuration
// =============================================================================

// serveConfig holds the server settings. Values load from the --config
// TOML file first; flags override them.
type serveConfig struct {
	Addr       string  `toml:"addr"`
	LibraryDir string  `toml:"library_dir"`
	MediaFile  string  `toml:"media_file"`
	Font       string  `toml:"font"`
	Estimate   bool    `toml:"estimate"`
	NoCache    bool    `toml:"no_cache"`
	Scale      float64 `toml:"preview_scale"`

	Redis redisServeConfig `toml:"redis"`
	Mongo mongoServeConfig `toml:"mongo"`
}

// redisServeConfig selects a shared redis session store when Addr is set.
type redisServeConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// mongoServeConfig selects a shared mongo layout library when URI is set.
type mongoServeConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// loadServeConfig reads the TOML config file. An empty path yields the
// zero config.
func loadServeConfig(path string) (serveConfig, error) {
	var cfg serveConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// mergeServeFlags applies set flag values over the file config.
func mergeServeFlags(cfg *serveConfig, addr, libDir, redisAddr, mongoURI string, engine engineOpts) {
	if addr != "" {
		cfg.Addr = addr
	}
	if libDir != "" {
		cfg.LibraryDir = libDir
	}
	if redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if mongoURI != "" {
		cfg.Mongo.URI = mongoURI
	}
	if engine.mediaFile != "" {
		cfg.MediaFile = engine.mediaFile
	}
	if engine.fontPath != "" {
		cfg.Font = engine.fontPath
	}
	if engine.estimate {
		cfg.Estimate = true
	}
	if engine.noCache {
		cfg.NoCache = true
	}
}

// =============================================================================
// Command
// =============================================================================

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		libDir     string
		redisAddr  string
		mongoURI   string
		engine     engineOpts
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the labelsmith HTTP API server",
		Long: `Run the labelsmith HTTP API server.

The server exposes session-scoped action endpoints, PNG previews, and a
named layout library over REST. Sessions live in memory unless a redis
address is configured; the layout library lives on disk unless a mongo
URI is configured.

Settings load from the --config TOML file first, and flags override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(configPath)
			if err != nil {
				return err
			}
			mergeServeFlags(&cfg, addr, libDir, redisAddr, mongoURI, engine)
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+defaultAddr+")")
	cmd.Flags().StringVar(&libDir, "library-dir", "", "directory for the layout library")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for shared sessions")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "mongodb URI for a shared layout library")
	engineFlags(cmd, &engine)

	return cmd
}

// runServe wires the stores and the engine together and blocks until ctx
// is cancelled or the listener fails.
func (c *CLI) runServe(ctx context.Context, cfg serveConfig) error {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	// Route engine events into the server log.
	observability.SetBridgeHooks(logBridgeHooks{logger: c.Logger})
	observability.SetRenderHooks(logRenderHooks{logger: c.Logger})
	observability.SetNormalizeHooks(logNormalizeHooks{logger: c.Logger})

	registry, err := c.newRegistry(cfg.MediaFile)
	if err != nil {
		return fmt.Errorf("load media profiles: %w", err)
	}

	cc, err := newCache(cfg.NoCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	sessions, err := c.newSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	lib, err := c.newLibraryStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open layout library: %w", err)
	}

	srv, err := server.New(server.Config{
		Addr:     cfg.Addr,
		Sessions: sessions,
		Library:  lib,
		Media:    registry,
		Measurer: render.NewHeadless(render.HeadlessOptions{
			FontPath:     cfg.Font,
			EstimateOnly: cfg.Estimate,
			Cache:        cc,
			Logger:       c.Logger,
		}),
		Cache:   cc,
		Preview: preview.Options{Scale: cfg.Scale, FontPath: cfg.Font, Logger: c.Logger},
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run(ctx)
}

// newSessionStore picks redis when configured, in-memory otherwise.
func (c *CLI) newSessionStore(ctx context.Context, cfg serveConfig) (session.Store, error) {
	if cfg.Redis.Addr == "" {
		c.Logger.Debug("using in-memory session store")
		return session.NewMemoryStore(session.DefaultTTL), nil
	}
	c.Logger.Infof("using redis session store at %s", cfg.Redis.Addr)
	return session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newLibraryStore picks mongo when configured, the local file store
// otherwise.
func (c *CLI) newLibraryStore(ctx context.Context, cfg serveConfig) (library.Store, error) {
	if cfg.Mongo.URI != "" {
		c.Logger.Infof("using mongo layout library %s", cfg.Mongo.Database)
		return library.NewMongoStore(ctx, library.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	}

	dir := cfg.LibraryDir
	if dir == "" {
		d, err := libraryDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	c.Logger.Debugf("using file layout library in %s", dir)
	return library.NewFileStore(dir)
}
