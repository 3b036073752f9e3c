package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gclm/flowgraph/pkg/buildinfo"
	"github.com/gclm/flowgraph/pkg/observability"
	"github.com/gclm/flowgraph/pkg/pipeline"
	"github.com/gclm/flowgraph/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowgraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is replaced by the loaded config file before any command runs.
	Config Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Flowgraph lays out workflow dependency graphs and renders their status",
		Long: `Flowgraph turns a workflow definition (phases and the phases they depend on)
into a layered graph and draws it with the live status of a running task.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowgraph/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.taskCommand())
	root.AddCommand(c.layersCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, loads the config
// file and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		registerLogHooks(c.Logger)
	}

	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "source", cfg.Source.Kind, "cache", cfg.Cache.Backend)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. withSource connects the
// configured workflow source; commands that already hold a definition skip
// it. The returned cleanup releases the cache and the source.
func (c *CLI) newRunner(ctx context.Context, noCache, withSource bool) (*pipeline.Runner, func(), error) {
	ch, err := newCache(ctx, c.Config.Cache, noCache)
	if err != nil {
		return nil, nil, err
	}

	keyer := newKeyer(c.Config.Cache)
	var src source.Source
	if withSource {
		src, err = newSource(ctx, c.Config.Source, ch, keyer)
		if err != nil {
			_ = ch.Close()
			return nil, nil, err
		}
	}

	runner := pipeline.NewRunner(ch, keyer, src, c.Logger)
	if c.Config.Cache.TTL > 0 {
		runner.ArtifactTTL = c.Config.Cache.TTL
	}

	cleanup := func() {
		if err := runner.Close(); err != nil {
			c.Logger.Warn("close runner", "err", err)
		}
		if closer, ok := unwrapSource(src).(interface{ Close(context.Context) error }); ok {
			if err := closer.Close(context.Background()); err != nil {
				c.Logger.Warn("close source", "err", err)
			}
		}
	}
	return runner, cleanup, nil
}

func unwrapSource(src source.Source) source.Source {
	if cached, ok := src.(*source.Cached); ok {
		return cached.Source
	}
	return src
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowgraph/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// renderFlags are the output flags shared by render, task and watch.
type renderFlags struct {
	size      string
	format    string
	direction string
	detailed  bool
	noCache   bool
	refresh   bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.size, "size", "s", "", "size profile: compact, normal (default from config)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: svg, json, dot, png (default from config)")
	cmd.Flags().StringVar(&f.direction, "direction", "", "graph direction for dot/png output: LR, TB")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "include layer and metadata in dot/png labels")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-render even when a cached artifact exists")
}

// options merges the flags over the [render] section of the config.
func (f renderFlags) options(cfg RenderConfig) pipeline.Options {
	opts := pipeline.Options{
		Size:      cfg.Size,
		Format:    cfg.Format,
		Direction: cfg.Direction,
		Detailed:  cfg.Detailed || f.detailed,
		Refresh:   f.refresh,
	}
	if f.size != "" {
		opts.Size = f.size
	}
	if f.format != "" {
		opts.Format = f.format
	}
	if f.direction != "" {
		opts.Direction = f.direction
	}
	return opts
}

// registerLogHooks reports pipeline, cache and source events at debug level.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetSourceHooks(h)
}
