// Binary vd prints the live volume-delta tape for one instrument: a single
// self-overwriting line per window, committed at each window close.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yencarnacion/volume-delta/internal/config"
	"github.com/yencarnacion/volume-delta/internal/delta"
	"github.com/yencarnacion/volume-delta/internal/feed"
	"github.com/yencarnacion/volume-delta/internal/market"
	"github.com/yencarnacion/volume-delta/internal/metrics"
	"github.com/yencarnacion/volume-delta/internal/render"
	"github.com/yencarnacion/volume-delta/internal/util"
	"github.com/yencarnacion/volume-delta/internal/window"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (built-in defaults when empty)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] SYMBOL\n", os.Args[0])
		os.Exit(2)
	}
	symbol := strings.ToUpper(flag.Arg(0))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	log := util.NewLogger(cfg.App.LogLevel).With().Str("symbol", symbol).Logger()

	_ = godotenv.Load() // best-effort
	apiKey := os.Getenv(cfg.Feed.APIKeyEnv)
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "vd: %s is not set\n", cfg.Feed.APIKeyEnv)
		os.Exit(1)
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agg := delta.New(symbol)
	client := feed.NewClient(cfg.Feed.URL, apiKey, symbol, log)
	handler := func(events []market.Event) {
		for _, ev := range events {
			agg.Apply(ev)
		}
	}
	sup := feed.NewSupervisor(func(ctx context.Context) error {
		return client.Run(ctx, handler)
	}, cfg.Feed.MaxRetries, cfg.Feed.RetryDelay(), log)

	go func() {
		if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("ingestion stopped, display continues on stale data")
		}
	}()

	printer := render.NewPrinter(os.Stdout)
	sched := window.NewScheduler(
		agg,
		window.SystemClock(),
		cfg.Window.Duration(),
		cfg.Window.Poll(),
		window.NewHistory(cfg.Window.HistoryDepth),
		printer,
		nil,
	)

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("scheduler stopped")
	}
	fmt.Println()
	log.Info().Msg("shutting down")
}
