package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aisdiag/internal/domain"
	"aisdiag/internal/report"
	"aisdiag/internal/run"
)

// Exit codes, consumed by whatever shell or CI wraps the tool:
// 0 all probes healthy, 2 issues detected, 1 fatal setup error,
// 130 interrupted.
const (
	exitHealthy   = 0
	exitSetupErr  = 1
	exitIssues    = 2
	exitInterrupt = 130
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one diagnostic run and write the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitSetupErr)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		rep, status, err := run.New(logger, cfg).Execute(ctx)
		stop()

		code := exitCode(ctx.Err(), err, status)
		switch {
		case ctx.Err() != nil:
			logger.Warn("run_interrupted")
		case err != nil:
			logger.Error("run_failed", zap.Error(err))
		default:
			if werr := writeReport(cmd, rep); werr != nil {
				logger.Error("report_write_failed", zap.Error(werr))
				code = exitSetupErr
			}
		}

		// os.Exit skips defers, so flush the buffered log sinks first.
		_ = logger.Sync()
		os.Exit(code)
		return nil
	},
}

// exitCode maps the run outcome onto the shell contract.
func exitCode(ctxErr, runErr error, status domain.RunStatus) int {
	switch {
	case ctxErr != nil:
		return exitInterrupt
	case runErr != nil:
		return exitSetupErr
	case status == domain.RunIssues:
		return exitIssues
	default:
		return exitHealthy
	}
}

func writeReport(cmd *cobra.Command, rep *domain.DiagnosticReport) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	var sink report.Sink
	switch format {
	case "json":
		sink = &report.JSONSink{Out: out}
	case "text":
		sink = &report.TextSink{Out: out}
	default:
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}
	return sink.Write(rep)
}

func init() {
	runCmd.Flags().String("format", "text", "report format: json or text")
	runCmd.Flags().String("output", "", "write the report to this file instead of stdout")
	rootCmd.AddCommand(runCmd)
}
