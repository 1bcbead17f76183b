// Binary spike renders a bounded history of finalized order-flow windows
// plus a live row, colored by the spike metric's sign.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yencarnacion/volume-delta/internal/archive"
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
			fmt.Fprintf(os.Stderr, "spike: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	log := util.NewLogger(cfg.App.LogLevel).With().Str("symbol", symbol).Logger()

	_ = godotenv.Load() // best-effort
	apiKey := os.Getenv(cfg.Feed.APIKeyEnv)
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "spike: %s is not set\n", cfg.Feed.APIKeyEnv)
		os.Exit(1)
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

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

	// The display keeps running on last-known state after the retry budget
	// runs out; the flag drives the stale marker on the live row.
	var live atomic.Bool
	live.Store(true)
	go func() {
		err := sup.Run(ctx)
		live.Store(false)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("ingestion stopped, display continues on stale data")
		}
	}()

	var rec window.Recorder
	if cfg.Archive.Enabled {
		jsonl, err := archive.NewJSONLRecorder(cfg.Archive.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("open archive")
		}
		defer jsonl.Close()
		rec = jsonl
	}

	screen := render.NewScreen(os.Stdout, &live)
	sched := window.NewScheduler(
		agg,
		window.SystemClock(),
		cfg.Window.Duration(),
		cfg.Window.Poll(),
		window.NewHistory(cfg.Window.HistoryDepth),
		screen,
		rec,
	)

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("scheduler stopped")
	}
	log.Info().Msg("shutting down")
}
