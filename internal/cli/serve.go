package cli

import (
	"github.com/spf13/cobra"

	"github.com/gclm/flowgraph/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP server until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered workflow graphs over HTTP",
		Long: `Serve rendered workflow graphs over HTTP.

Workflows are looked up in the source configured in config.toml; rendered
artifacts are kept in the configured cache. See the server package for the
routes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, cleanup, err := c.newRunner(ctx, noCache, true)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(runner, c.Logger)
			if c.Config.Server.RequestTimeout > 0 {
				srv.RequestTimeout = c.Config.Server.RequestTimeout
			}

			printInfo("Serving on %s", addr)
			printKeyValue("source", c.Config.Source.Kind)
			printKeyValue("cache", c.Config.Cache.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
