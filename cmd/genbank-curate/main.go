// Command genbank-curate downloads SARS-CoV-2 nucleotide records from NCBI
// Virus, geocodes and canonicalizes them, and writes the curated metadata
// table, the FASTA file and the locations map to OUTPUT_DIR.
//
// Usage:
//
//	genbank-curate <api-key-file> <email>
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/genbank-curate/internal/adapter/files"
	"github.com/couchcryptid/genbank-curate/internal/adapter/gmaps"
	kafkaadapter "github.com/couchcryptid/genbank-curate/internal/adapter/kafka"
	"github.com/couchcryptid/genbank-curate/internal/adapter/ncbi"
	"github.com/couchcryptid/genbank-curate/internal/config"
	"github.com/couchcryptid/genbank-curate/internal/domain"
	"github.com/couchcryptid/genbank-curate/internal/observability"
	"github.com/couchcryptid/genbank-curate/internal/pipeline"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genbank-curate <api-key-file> <email>",
		Short: "Curate GenBank SARS-CoV-2 records into metadata, FASTA and location files",
		Long: `Downloads nucleotide records from NCBI Virus, resolves each record's
location with the Google geocoding API and writes:

  genbank_seq_metadata.tsv   one row per accepted record
  genbank_seqs.fasta         the matching sequences
  genbank_locations_map.tsv  coordinates of every resolved location

Settings are read from the environment (OUTPUT_DIR, RECORD_LIMIT, LOG_LEVEL, ...).`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readAPIKey(args[0])
			if err != nil {
				slog.Error("failed to read api key", "error", err)
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				slog.Error("failed to load config", "error", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, key, args[1])
		},
	}
}

func run(ctx context.Context, cfg *config.Config, apiKey, email string) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	defer writeMetrics(cfg, metrics, logger)

	geocoder := gmaps.NewClient(apiKey, gmaps.Options{
		Timeout:    cfg.GeocoderTimeout,
		RateLimit:  cfg.GeocoderRateLimit,
		MaxRetries: cfg.GeocoderMaxRetries,
	}, metrics, logger)

	state := domain.NewRunState()
	canon := domain.NewCanonicalizer(domain.Normalization{
		Host:    cfg.NormalizeHost,
		Country: cfg.NormalizeCountry,
		Strain:  cfg.NormalizeStrain,
	})
	curator := domain.NewCurator(domain.NewResolver(geocoder, state), canon, state)

	source, err := openSource(ctx, cfg, email, logger)
	if err != nil {
		logger.Error("failed to open record source", "error", err)
		return err
	}
	defer source.Close()

	writer, err := files.Create(cfg.OutputDir)
	if err != nil {
		logger.Error("failed to create output files", "error", err)
		return err
	}

	loaders := pipeline.MultiLoader{writer}
	var publisher *kafkaadapter.Writer
	if cfg.PublishEnabled() {
		publisher = kafkaadapter.NewWriter(cfg, metrics, logger)
		loaders = append(loaders, publisher)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	opts := pipeline.Options{
		RecordLimit:      cfg.RecordLimit,
		ProgressInterval: cfg.ProgressInterval,
	}
	if cfg.ProgressBar {
		opts.Progress = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("curating records"),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
		)
	}

	p := pipeline.New(source, curator, loaders, writer, state, logger, metrics, opts)
	sum, runErr := p.Run(ctx)

	closeErr := writer.Close()
	if publisher != nil {
		closeErr = errors.Join(closeErr, publisher.Close())
	}

	if err := errors.Join(runErr, closeErr); err != nil {
		logger.Error("curation failed", "error", err, "read", sum.Read, "emitted", sum.Emitted)
		return err
	}

	logger.Info("curation complete",
		"read", sum.Read,
		"emitted", sum.Emitted,
		"skipped", sum.SkippedTotal(),
		"locations", sum.Locations,
		"cache_hits", sum.CacheHits,
		"cache_misses", sum.CacheMisses,
		"duration", sum.Duration,
		"output_dir", cfg.OutputDir,
	)
	for reason, n := range sum.Skipped {
		logger.Debug("skipped records", "reason", reason, "count", n)
	}
	return nil
}

func openSource(ctx context.Context, cfg *config.Config, email string, logger *slog.Logger) (*ncbi.Source, error) {
	if cfg.NCBIResponseFile != "" {
		logger.Info("replaying saved ncbi response", "path", cfg.NCBIResponseFile)
		return ncbi.OpenFile(cfg.NCBIResponseFile)
	}
	return ncbi.NewClient(email, cfg.TaxonID, cfg.NCBITimeout, logger).Open(ctx)
}

func writeMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logger.Warn("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
	}
}

// readAPIKey returns the first line of path, trimmed.
func readAPIKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open api key file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read api key file: %w", err)
		}
		return "", errors.New("api key file is empty")
	}
	key := strings.TrimSpace(sc.Text())
	if key == "" {
		return "", errors.New("api key file is empty")
	}
	return key, nil
}
