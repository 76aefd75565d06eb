package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/usps-tools/addrvalidate/pkg/batch"
	"github.com/usps-tools/addrvalidate/pkg/config"
	"github.com/usps-tools/addrvalidate/pkg/csvio"
	"github.com/usps-tools/addrvalidate/pkg/logging"
	"github.com/usps-tools/addrvalidate/pkg/ratelimit"
	"github.com/usps-tools/addrvalidate/pkg/report"
	"github.com/usps-tools/addrvalidate/pkg/usps"
)

func newRootCommand() *cobra.Command {
	var (
		inputFile   string
		envFile     string
		batchSize   int
		batchDelay  time.Duration
		dataDir     string
		outputFile  string
		logLevel    string
		logPretty   bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:           "addrvalidate --input FILE",
		Short:         "Validate a CSV of mailing addresses against the USPS Addresses v3 API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}

			// Flags override the environment.
			flags := cmd.Flags()
			if flags.Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if flags.Changed("delay") {
				cfg.BatchDelay = batchDelay
			}
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if flags.Changed("output") {
				cfg.OutputFile = outputFile
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("pretty") {
				cfg.LogPretty = logPretty
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.LogLevel),
				Pretty: cfg.LogPretty,
				Output: os.Stderr,
			})

			if cfg.MetricsAddr != "" {
				serveMetrics(cfg.MetricsAddr, logger)
			}

			return run(cmd.Context(), cfg, inputFile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input CSV filename, resolved against the data directory")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: ./.env when present)")
	cmd.Flags().IntVar(&batchSize, "batch-size", config.DefaultBatchSize, "Records per batch")
	cmd.Flags().DurationVar(&batchDelay, "delay", config.DefaultBatchDelay, "Pause between batches")
	cmd.Flags().StringVar(&dataDir, "data-dir", config.DefaultDataDir, "Directory the input file is resolved against")
	cmd.Flags().StringVarP(&outputFile, "output", "o", config.DefaultOutputFile, "Output CSV path")
	cmd.Flags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&logPretty, "pretty", false, "Human-readable console logs instead of JSON")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9108)")
	cmd.MarkFlagRequired("input")

	return cmd
}

// run executes the validation pipeline: load input, acquire a token,
// validate in paced batches, finalize the output table. It returns typed
// errors; exit-code policy stays in main.
func run(ctx context.Context, cfg *config.Config, inputFile string, out io.Writer) error {
	records, err := csvio.Load(cfg.DataDir, inputFile)
	if err != nil {
		return err
	}

	client, err := usps.New(usps.Config{
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		TokenURL:      cfg.TokenURL,
		AddressAPIURL: cfg.AddressAPIURL,
		Timeout:       cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	cred, err := client.AcquireToken(ctx)
	if err != nil {
		return err
	}

	pacer := ratelimit.NewPacer(cfg.BatchDelay, logging.NewLogger("pacer"))

	orch, err := batch.New(client, pacer, cfg.BatchSize)
	if err != nil {
		return err
	}

	results, err := orch.Run(ctx, records, cred)
	if err != nil {
		return err
	}

	sum, err := report.Finalize(results, func(rs []usps.Result) error {
		return csvio.WriteResults(cfg.OutputFile, rs)
	})
	if err != nil {
		return err
	}

	if sum.Total > 0 {
		fmt.Fprintln(out, report.SampleTable(results, 5))
	}

	return nil
}

// serveMetrics exposes the Prometheus registry in the background for runs
// long enough to scrape.
func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Str("addr", addr).Msg("Metrics server stopped")
		}
	}()
}
