package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wastewise/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classification API over HTTP",
	Long: `Serve exposes classification and history over HTTP:

  POST   /classify        multipart "image" (or "url"), optional "session"
  GET    /stats
  GET    /records         ?q=&category=&days=&from=&to=&limit=
  GET    /records/{id}
  DELETE /records
  GET    /export
  POST   /import
  GET    /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := serveAddr
		if addr == "" {
			addr = appConfig.Server.Addr
		}

		srv := server.New(a.orchestrator, a.ledger, server.Options{
			AllowedOrigins: appConfig.Server.AllowedOrigins,
			MaxUploadBytes: appConfig.Server.MaxUploadBytes,
			Version:        Version,
			Fetcher:        a.publicFetcher(),
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}
