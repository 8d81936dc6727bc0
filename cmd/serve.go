package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataprep/internal/logger"
	"github.com/KaramelBytes/dataprep/internal/metrics"
	"github.com/KaramelBytes/dataprep/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis and preprocessing API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ServerAddr
		if cmd.Flags().Changed("addr") || addr == "" {
			addr = serveAddr
		}
		delim := cfg.Delimiter()
		if delim == 0 {
			delim = ','
		}
		rec := metrics.New()
		srv := server.New(server.Config{
			Addr:           addr,
			RequestTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
			BodyLimit:      cfg.BodyLimit,
			Delimiter:      delim,
		}, newTransformer(rec), logger.Get(), rec)
		return srv.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (overrides server_addr)")
}
