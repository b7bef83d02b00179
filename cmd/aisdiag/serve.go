package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aisdiag/internal/httpapi"
	"aisdiag/internal/run"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose on-demand diagnostic runs over HTTP",
	Long: "Starts an HTTP server where POST /api/diagnose executes a fresh " +
		"diagnostic run and returns the report as JSON. No state is kept " +
		"between requests.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitSetupErr)
		}
		defer logger.Sync()

		api := httpapi.NewServer(logger, run.New(logger, cfg))
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		return http.ListenAndServe(cfg.Addr, api.Router())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "bind address for the API")
	_ = v.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
