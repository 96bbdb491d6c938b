package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ufolux/TransPop/internal/cli"
	"github.com/ufolux/TransPop/internal/httpapi"
)

func newServeCmd(envLoader *cli.EnvLoader) *cobra.Command {
	var (
		host            string
		port            int
		readTimeout     time.Duration
		writeTimeout    time.Duration
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local translation API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port <= 0 || port > 65535 {
				return usageErrorf("--port must be between 1 and 65535")
			}

			rt, err := bootstrap(envLoader, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			initial, err := rt.selection("", "", "")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			editor := rt.newOrchestrator(initial, 0)
			defer editor.Close()

			srv := httpapi.NewServer(rt.gateway, editor, rt.history, rt.logger, httpapi.Options{
				Host:               host,
				Port:               port,
				ReadTimeout:        readTimeout,
				WriteTimeout:       writeTimeout,
				ShutdownTimeout:    shutdownTimeout,
				CORSAllowedOrigins: rt.cfg.CORSAllowedOriginsList(),
			})

			if err := srv.Start(ctx); err != nil {
				rt.logger.Error().Err(err).Str("host", host).Int("port", port).Msg("server failed")
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host interface to bind")
	cmd.Flags().IntVar(&port, "port", 8090, "HTTP port")
	cmd.Flags().DurationVar(&readTimeout, "read-timeout", 10*time.Second, "HTTP read timeout")
	cmd.Flags().DurationVar(&writeTimeout, "write-timeout", 60*time.Second, "HTTP write timeout")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	return cmd
}
