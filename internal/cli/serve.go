package cmd

import (
	"github.com/rohmanhakim/newsfeed/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the news page and its JSON API over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError(environ)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, cmd.ErrOrStderr(), nowFunc)
		if err != nil {
			return err
		}
		defer a.close()

		srv := server.New(server.ServerOptions{
			Cache:      a.cache,
			Fetch:      a.fetch,
			Now:        a.now,
			Preference: a.preference,
			Renderer:   a.renderer,
			Logger:     a.logger,
		})
		endpoint := cfg.EndpointURL()
		a.logger.Info().
			Str("addr", cfg.ListenAddr()).
			Str("endpoint", endpoint.String()).
			Str("session", a.recorder.SessionID()).
			Msg("serving news feed")
		return srv.ListenAndServe(cmd.Context(), cfg.ListenAddr())
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (default :8080)")
}
