package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"windy-gridworld-go/internal/config"
	"windy-gridworld-go/internal/engine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "windyrl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return errors.New("missing subcommand; try 'run' or 'trace'")
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "run":
		return runEpisodes(os.Args[2:], os.Stdout)
	case "trace":
		return runTrace(os.Args[2:])
	default:
		return fmt.Errorf("unknown subcommand %q", subcommand)
	}
}

// runEpisodes layers settings as defaults < config file < WINDY_* env < flags
// and validates once all layers are applied.
func runEpisodes(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", "", "YAML run file")
	episodes := fs.Int("episodes", 0, "number of episodes (overrides config)")
	seed := fs.Int64("seed", 0, "deterministic seed (0 keeps config value)")
	height := fs.Int("height", 0, "grid height (overrides config)")
	width := fs.Int("width", 0, "grid width (overrides config)")
	standStill := fs.Bool("stand-still", false, "enable the stand-still action (-stand-still=false overrides config)")
	policy := fs.String("policy", "", "action policy: random or scripted")
	script := fs.String("script", "", "comma separated actions for the scripted policy")
	maxSteps := fs.Int("max-steps", 0, "step limit per episode (overrides config)")
	metricsAddr := fs.String("metrics-addr", "", "serve prometheus metrics on this address while running")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	logger, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug(".env not loaded", "err", err)
	}

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return err
	}
	if *episodes != 0 {
		cfg.Run.Episodes = *episodes
	}
	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if *height != 0 {
		cfg.Grid.Height = *height
	}
	if *width != 0 {
		cfg.Grid.Width = *width
	}
	if set["stand-still"] {
		cfg.Grid.StandStill = *standStill
	}
	if *policy != "" {
		cfg.Run.Policy = *policy
	}
	if *script != "" {
		actions, err := config.ParseActions(*script)
		if err != nil {
			return err
		}
		cfg.Run.Script = cfg.Run.Script[:0]
		for _, a := range actions {
			cfg.Run.Script = append(cfg.Run.Script, int(a))
		}
		if *policy == "" {
			cfg.Run.Policy = engine.PolicyScripted
		}
	}
	if *maxSteps != 0 {
		cfg.Run.MaxSteps = *maxSteps
	}
	if cfg.Run.Episodes <= 0 {
		return fmt.Errorf("episodes must be positive (got %d)", cfg.Run.Episodes)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	runner, err := engine.NewRunner(cfg.RunConfig(), engine.WithLogger(logger), engine.WithRegisterer(reg))
	if err != nil {
		return err
	}

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "addr", *metricsAddr, "err", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", *metricsAddr)
	}

	rc := runner.Config()
	fmt.Fprintf(stdout, "run config => run_id=%s grid=%dx%d stand_still=%t episodes=%d seed=%d policy=%s max_steps=%d\n",
		runner.RunID(), rc.Env.Height, rc.Env.Width, rc.Env.StandStill, rc.Episodes, rc.Seed, rc.Policy, rc.MaxSteps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var final engine.Snapshot
	for snapshot := range runner.Run(ctx) {
		if snapshot.Status == engine.StatusEpisodeComplete {
			fmt.Fprintf(stdout, "episode %d: outcome=%s reward=%d steps=%d\n",
				snapshot.Episode, snapshot.Outcome, snapshot.EpisodeReward, snapshot.EpisodeSteps)
		}
		final = snapshot
	}
	if final.Status == engine.StatusCancelled {
		return context.Canceled
	}

	completed := final.EpisodesCompleted
	if completed == 0 {
		return nil
	}
	avgReward := float64(final.TotalReward) / float64(completed)
	avgSteps := float64(final.TotalSteps) / float64(completed)
	successRate := float64(final.SuccessCount) / float64(completed)
	fmt.Fprintf(stdout, "summary: avg_reward=%.2f avg_steps=%.2f success_rate=%.2f\n", avgReward, avgSteps, successRate)
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
