package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/config"
	"ExchangeCore/internal/core"
	"ExchangeCore/internal/ingest"
	"ExchangeCore/internal/notify"
	"ExchangeCore/internal/observability"
	"ExchangeCore/internal/output"
	"ExchangeCore/internal/processor"
	"ExchangeCore/internal/sequencer"
	"ExchangeCore/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level := observability.ParseLogLevel(cfg.Logging.Level)
	log := observability.NewLoggerWithLevel("exchangecore", level, cfg.Logging.File)
	log.Info().Msg("starting")

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Durable store ---
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("store open failed")
	}
	defer db.Close()

	stores, err := store.NewStores(db)
	if err != nil {
		log.Fatal().Err(err).Msg("store tables failed")
	}

	// --- Caches: load persisted state before accepting events ---
	caches := cache.NewCaches(stores, log, metrics)
	caches.InitializeAll()

	// --- NATS: one connection for the notifier and the inbound consumer ---
	var notifier notify.Notifier = notify.Noop{}
	var js jetstream.JetStream
	if cfg.NATS.Enabled {
		nc, jsc, err := notify.Connect(cfg.NATS.URL, log)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATS.URL).Msg("nats connect failed")
		}
		defer nc.Close()
		js = jsc
		if err := notify.EnsureStream(ctx, js); err != nil {
			log.Fatal().Err(err).Msg("nats stream setup failed")
		}
		notifier = notify.NewPublisher(js, log)
		log.Info().Str("url", cfg.NATS.URL).Msg("NATS connected")
	}

	// --- Result fan-out ---
	out := output.New(caches, notifier, cfg.Output.Workers, cfg.Output.QueueSize, log, metrics)
	out.Start()

	// --- Dedup + dispatcher + sequencer ---
	dedup := core.NewDedupCache(time.Duration(cfg.Dedup.TTLHours) * time.Hour)
	dedup.StartSweeper(ctx, time.Duration(cfg.Dedup.SweepMinutes)*time.Minute)

	dispatcher := core.NewDispatcher(dedup, processor.Registry(caches), out.Results(), log, metrics)

	seq := sequencer.New(cfg.Sequencer.Capacity, dispatcher, log, metrics)
	seq.Start()

	// --- Inbound events ---
	var consumer *ingest.Consumer
	if cfg.NATS.Enabled {
		if err := ingest.EnsureStream(ctx, js); err != nil {
			log.Fatal().Err(err).Msg("nats request stream setup failed")
		}
		consumer = ingest.NewConsumer(js, seq, log)
		if err := consumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("ingest consumer start failed")
		}
	}

	// --- Metrics endpoint ---
	metricsServer := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: metricsHandler(),
	}
	go func() {
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	log.Info().
		Int("sequencer_capacity", cfg.Sequencer.Capacity).
		Int("output_workers", cfg.Output.Workers).
		Msg("ready")

	// --- Wait for shutdown signal ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	// Ordered shutdown: stop intake, drain the sequencer, drain the fan-out,
	// final flush, then close the rest.
	if consumer != nil {
		consumer.Stop()
	}
	seq.Shutdown()
	out.Shutdown()
	cancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = metricsServer.Shutdown(shutCtx)

	log.Info().Msg("shutdown complete")
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
