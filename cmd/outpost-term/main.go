// Package main runs one Outpost 31 session in the local terminal.
// The difficulty preference and the journal share the server's SQLite file.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/infra/storage"
	"github.com/outpost31/simulator/internal/platform/config"
	"github.com/outpost31/simulator/internal/platform/locale"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
	"github.com/outpost31/simulator/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "outpost-term:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, warnings := config.Load()

	// The alt screen owns stdout; diagnostics go to a side file.
	logFile, err := os.OpenFile("outpost-term.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	appLogger := logger.NewLoggerTo(logFile)
	for _, w := range warnings {
		appLogger.Warn(w)
	}

	locale.Configure(cfg.LocaleDir, cfg.Language)
	graph, err := story.Station()
	if err != nil {
		return fmt.Errorf("node table: %w", err)
	}

	db, err := storage.InitSQLite(cfg.DBPath, storage.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	prefs := storage.NewDifficultyPreference(storage.NewSQLitePreferenceRepository(db))
	difficulty, err := prefs.LoadDifficulty(context.Background())
	if err != nil {
		appLogger.Warn("Could not read stored difficulty: " + err.Error())
	}

	eventLog := events.NewEventLog(storage.NewSQLiteEventRepository(db).Persister(nil))
	eventLog.OnPersistError(func(err error) {
		appLogger.Error("Failed to persist journal event: " + err.Error())
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventLog.Flush(ctx); err != nil {
			appLogger.Warn("Journal writes still pending at exit: " + err.Error())
		}
	}()

	sessions := session.NewManager(eventLog, session.Deps{
		Graph:       graph,
		Log:         appLogger,
		Random:      engine.NewRandom(),
		Preferences: prefs,
	}, difficulty, 1, nil)

	sess, err := sessions.Open()
	if err != nil {
		return err
	}
	defer sessions.Close(sess.ID())

	return ui.NewApp(sess, cfg.PassiveTick).Run()
}
