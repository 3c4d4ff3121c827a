package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"qviz/internal/analysis"
	"qviz/internal/config"
	"qviz/internal/demo"
	"qviz/internal/sim"
	"qviz/internal/visualize"
	"qviz/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	shots := flag.Int("shots", cfg.Shots, "shots per ideal and noisy run")
	seed := flag.Uint64("seed", cfg.Seed, "simulator seed, 0 for a fresh seed")
	out := flag.String("out", ".", "directory for figures")
	plots := flag.Bool("plots", false, "write figures and Bloch sphere images")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg, *shots, *seed, *out, *plots); err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}
}

func run(ctx context.Context, log zerolog.Logger, cfg *config.Config, shots int, seed uint64, out string, plots bool) error {
	noise := sim.BasisModel(cfg.P1, cfg.P2)
	noise.PMeas = cfg.PMeas

	analyzer := analysis.NewAnalyzer(
		analysis.WithNoiseModel(noise),
		analysis.WithSeed(seed),
		analysis.WithLogger(log),
	)

	suite := demo.Suite()
	results, err := analyzer.RunSuite(ctx, suite, shots)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Print(analysis.Summary(r))
	}
	fmt.Print(analysis.Report(results))

	if !plots {
		return nil
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	viz := visualize.New(log)
	for _, r := range results {
		figures, err := analysis.Figures(r)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
		for i, fig := range figures {
			if err := writeFile(log, filepath.Join(out, analysis.FigureName(r.Name, i)), fig); err != nil {
				return err
			}
		}

		res, err := viz.VisualizeCircuit(ctx, r.Circuit, visualize.Options{Images: true})
		if err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
		if err := writeFile(log, filepath.Join(out, demo.Slug(r.Name)+"_bloch.png"), res.StateImage); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(log zerolog.Logger, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Wrote figure")
	return nil
}
