package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/netsim/bgpsim/internal/ingest"
	"github.com/netsim/bgpsim/internal/log"
	"github.com/netsim/bgpsim/internal/metrics"
	"github.com/netsim/bgpsim/internal/xerrors"
	"github.com/netsim/bgpsim/pkg/asgraph"
	"github.com/netsim/bgpsim/pkg/propagate"
)

func newRunCmd() *cobra.Command {
	var (
		relationshipsPath string
		announcementsPath string
		rovASNsPath       string
		outputPath        string
		ribFormat         string
		summarize         bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the AS graph, seed announcements, propagate, and export the resulting RIBs",
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := parseShape(ribFormat)
			if err != nil {
				return err
			}
			logger := log.New(viper.GetString("log-level"))
			ctx := log.CtxWith(context.Background(), logger)

			if addr := viper.GetString("metrics-addr"); addr != "" {
				go serveMetrics(logger, addr)
			}

			return runSimulation(ctx, logger, runConfig{
				relationshipsPath: relationshipsPath,
				announcementsPath: announcementsPath,
				rovASNsPath:       rovASNsPath,
				outputPath:        outputPath,
				shape:             shape,
				summarize:         summarize,
			})
		},
	}

	cmd.Flags().StringVar(&relationshipsPath, "relationships", "", "path to the AS relationship file (required)")
	cmd.Flags().StringVar(&announcementsPath, "announcements", "", "path to the seed announcement CSV (required)")
	cmd.Flags().StringVar(&rovASNsPath, "rov-asns", "", "optional path to a list of ASNs that deploy ROV")
	cmd.Flags().StringVar(&outputPath, "output", "ribs.csv", "path to write the exported RIB CSV")
	cmd.Flags().StringVar(&ribFormat, "rib-format", "space", "as_path rendering: space|tuple")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "also print a per-origin covering-prefix summary to stderr")
	_ = cmd.MarkFlagRequired("relationships")
	_ = cmd.MarkFlagRequired("announcements")

	return cmd
}

type runConfig struct {
	relationshipsPath string
	announcementsPath string
	rovASNsPath       string
	outputPath        string
	shape             ingest.PathShape
	summarize         bool
}

func runSimulation(ctx context.Context, logger log.Logger, cfg runConfig) error {
	g := asgraph.New()

	relFile, err := os.Open(cfg.relationshipsPath)
	if err != nil {
		return xerrors.Wrap(xerrors.IoUnavailable, "opening relationships file", err, "path", cfg.relationshipsPath)
	}
	defer relFile.Close()
	relStats, err := ingest.LoadRelationships(ctx, relFile, g)
	if err != nil {
		return xerrors.Wrap(xerrors.IoUnavailable, "reading relationships file", err, "path", cfg.relationshipsPath)
	}
	logger.Info("loaded relationships", "lines", relStats.LinesRead, "skipped", relStats.LinesSkipped)

	if err := g.CheckAcyclic(); err != nil {
		return err
	}

	if cfg.rovASNsPath != "" {
		rovFile, err := os.Open(cfg.rovASNsPath)
		if err != nil {
			return xerrors.Wrap(xerrors.IoUnavailable, "opening ROV ASN file", err, "path", cfg.rovASNsPath)
		}
		defer rovFile.Close()
		rovStats, err := ingest.LoadROVASNs(ctx, rovFile, g)
		if err != nil {
			return xerrors.Wrap(xerrors.IoUnavailable, "reading ROV ASN file", err, "path", cfg.rovASNsPath)
		}
		logger.Info("loaded ROV ASNs", "upgraded", rovStats.Upgraded, "skipped", rovStats.LinesSkipped)
	}

	annFile, err := os.Open(cfg.announcementsPath)
	if err != nil {
		return xerrors.Wrap(xerrors.IoUnavailable, "opening announcements file", err, "path", cfg.announcementsPath)
	}
	defer annFile.Close()
	seedStats, err := ingest.LoadSeeds(ctx, annFile, g)
	if err != nil {
		return xerrors.Wrap(xerrors.IoUnavailable, "reading announcements file", err, "path", cfg.announcementsPath)
	}
	logger.Info("loaded seeds", "rows", seedStats.RowsRead,
		"malformed", seedStats.RowsMalformed, "unknown_as", seedStats.RowsUnknownAS)

	if err := propagate.Run(ctx, g); err != nil {
		return err
	}

	out, err := os.Create(cfg.outputPath)
	if err != nil {
		return xerrors.Wrap(xerrors.IoUnavailable, "creating output file", err, "path", cfg.outputPath)
	}
	defer out.Close()
	if err := ingest.ExportRIB(out, g, cfg.shape); err != nil {
		return xerrors.Wrap(xerrors.IoUnavailable, "writing RIB export", err, "path", cfg.outputPath)
	}
	logger.Info("wrote RIB export", "path", cfg.outputPath)

	if cfg.summarize {
		printSummary(g)
	}
	return nil
}

func parseShape(s string) (ingest.PathShape, error) {
	switch s {
	case "space", "":
		return ingest.SpaceJoined, nil
	case "tuple":
		return ingest.TupleLiteral, nil
	default:
		return 0, fmt.Errorf("invalid --rib-format %q: want space or tuple", s)
	}
}

func printSummary(g *asgraph.Graph) {
	summary := ingest.SummarizeRIB(g)
	for origin, pfxs := range summary {
		fmt.Fprintf(os.Stderr, "origin %s:\n", origin)
		for _, p := range pfxs {
			fmt.Fprintf(os.Stderr, "  %s\n", p)
		}
	}
}

func serveMetrics(logger log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}
