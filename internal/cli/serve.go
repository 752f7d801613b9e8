package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rocjay1/finpulse/internal/handler"
	"github.com/spf13/cobra"
)

func (cli *CLI) newServeCmd() *cobra.Command {
	opts := &sourceOptions{}
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session API for a browser client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := cli.loadConfig(false)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = log.WithContext(ctx)

			sess, err := newSession(ctx, cfg, opts.apply(cfg.Settings()), log)
			if err != nil {
				return err
			}
			defer sess.Close()

			if opts.restore != "" {
				if err := populate(ctx, sess, opts, log); err != nil {
					return err
				}
			}

			if addr == "" {
				addr = cfg.Server.Addr()
			}
			router := handler.NewRouter(&handler.Dependencies{Session: sess}, log)
			return handler.NewServer(addr, router, cfg.Server.ShutdownTimeout, log).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.restore, "restore", "", "Restore a saved snapshot on start")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Initial report language")
	cmd.Flags().StringVarP(&opts.industry, "industry", "i", "", "Initial benchmark industry")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
