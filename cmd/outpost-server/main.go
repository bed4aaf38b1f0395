// Package main is the entry point for the Outpost 31 simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/infra/storage"
	"github.com/outpost31/simulator/internal/network"
	"github.com/outpost31/simulator/internal/platform/config"
	"github.com/outpost31/simulator/internal/platform/locale"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/platform/metrics"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
)

func main() {
	log.Println("[OUTPOST-SERVER] Initializing Outpost 31 containment simulation...")

	appLogger := logger.NewLogger()

	cfg, warnings := config.Load()
	for _, w := range warnings {
		appLogger.Warn(w)
	}
	appLogger.Infof("Profile %q, passive tick every %s.", cfg.Profile, cfg.PassiveTick)

	// Catalogues must be in place before the node table captures its labels.
	locale.Configure(cfg.LocaleDir, cfg.Language)

	graph, err := story.Station()
	if err != nil {
		appLogger.Error("Station node table is invalid: " + err.Error())
		os.Exit(1)
	}
	appLogger.Infof("Node table validated (%d nodes).", graph.Len())

	appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath, storage.PoolOptions{
		MaxOpenConns: cfg.Tuning.DBMaxOpenConns,
		MaxIdleConns: cfg.Tuning.DBMaxIdleConns,
	})
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefs := storage.NewDifficultyPreference(storage.NewSQLitePreferenceRepository(db))
	difficulty, err := prefs.LoadDifficulty(ctx)
	if err != nil {
		appLogger.Warn("Could not read stored difficulty, using " + string(difficulty) + ": " + err.Error())
	}

	collector := metrics.Get()
	eventRepo := storage.NewSQLiteEventRepository(db)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventRepo.Persister(collector))
	eventLog.OnPersistError(func(err error) {
		appLogger.Error("Failed to persist journal event: " + err.Error())
	})
	eventLog.Subscribe(collector.ObserveEvent)

	sessions := session.NewManager(eventLog, session.Deps{
		Graph:       graph,
		Log:         appLogger,
		Random:      engine.NewRandom(),
		Preferences: prefs,
	}, difficulty, cfg.Tuning.MaxSessions, collector)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(sessions, cfg.Tuning, appLogger, collector)
	go hub.Run(ctx)

	clock := engine.NewTicker(cfg.PassiveTick, appLogger, hub.Tick)
	go clock.Start(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	network.NewReplayHandler(eventLog, eventRepo, sessions, appLogger).RegisterRoutes(mux)
	network.NewAudienceBridge(sessions, hub, appLogger).RegisterRoutes(mux)
	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prom", metrics.PrometheusHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"sessions": sessions.Len(),
			"clients":  hub.ClientCount(),
			"ticks":    clock.TickCount(),
		})
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[OUTPOST-SERVER] HTTP API & WS Server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[OUTPOST-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[OUTPOST-SERVER] Shutting down...")
	clock.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown: " + err.Error())
	}
	cancel()

	// Drain journal writes before the deferred db.Close.
	if err := eventLog.Flush(shutdownCtx); err != nil {
		appLogger.Warn("Journal writes still pending at exit: " + err.Error())
	}
}
