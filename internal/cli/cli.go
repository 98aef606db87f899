package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/labelsmith/labelsmith/pkg/buildinfo"
	"github.com/labelsmith/labelsmith/pkg/cache"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/pipeline"
	"github.com/labelsmith/labelsmith/pkg/preview"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "labelsmith"

	// defaultAddr is the default listen address for the serve command.
	defaultAddr = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "labelsmith",
		Short:        "Labelsmith repairs and renders thermal label layouts",
		Long:         `Labelsmith edits thermal-tape label layouts through JSON action batches. Every edit runs through a deterministic repair engine that measures items, resolves overlaps, and keeps the layout printable on the chosen media.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.capabilitiesCommand())
	root.AddCommand(c.mediaCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// engineOpts are the flags shared by every command that runs the layout
// engine.
type engineOpts struct {
	noCache   bool
	estimate  bool
	fontPath  string
	mediaFile string
}

// engineFlags registers the shared engine flags on cmd.
func engineFlags(cmd *cobra.Command, opts *engineOpts) {
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.estimate, "estimate", false, "estimate text bounds instead of rasterizing")
	cmd.Flags().StringVar(&opts.fontPath, "font", "", "TTF font file for text measurement and previews")
	cmd.Flags().StringVar(&opts.mediaFile, "media-file", "", "TOML file with extra media profiles")
}

// newRegistry returns the built-in media profiles, merged with the
// profiles from mediaFile when one is given.
func (c *CLI) newRegistry(mediaFile string) (*media.Registry, error) {
	registry := media.Builtin()
	if mediaFile != "" {
		if err := registry.LoadFile(mediaFile); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(opts engineOpts, registry *media.Registry) (*pipeline.Runner, error) {
	cc, err := newCache(opts.noCache)
	if err != nil {
		return nil, err
	}
	measurer := render.NewHeadless(render.HeadlessOptions{
		FontPath:     opts.fontPath,
		EstimateOnly: opts.estimate,
		Cache:        cc,
		Logger:       c.Logger,
	})
	return pipeline.NewRunner(pipeline.Config{
		Cache:    cc,
		Measurer: measurer,
		Media:    registry,
		Preview:  preview.Options{FontPath: opts.fontPath, Logger: c.Logger},
		Logger:   c.Logger,
	}), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/labelsmith/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// libraryDir returns the default layout library directory using XDG
// standard (~/.local/share/labelsmith/library/).
func libraryDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "library"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "library"), nil
}
