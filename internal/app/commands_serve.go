package app

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/httpapi"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only view API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, ro, err := buildContext(cmd, opts, "serve")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			level := slog.LevelInfo
			if ro.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			addr := firstNonEmpty(listen, ro.Listen)
			srv := httpapi.NewServer(st, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check --listen and that the port is free", 1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, host:port")
	return cmd
}
