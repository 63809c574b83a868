// Command metastored runs the replicated metadata cache service: a
// store.MetadataStore backend (memory or DynamoDB) fronted by the
// internal/ipc Unix-socket protocol every trackerd node speaks.
// Grounded on cmd/joblet/main.go's config-load/logger-init shape and
// the teacher's state/cmd/state daemon, which plays the same role for
// its own replicated job-state service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gridforge/jobtracker/internal/ipc"
	"github.com/gridforge/jobtracker/internal/store"
	"github.com/gridforge/jobtracker/internal/store/dynamostore"
	"github.com/gridforge/jobtracker/internal/store/memstore"
	"github.com/gridforge/jobtracker/pkg/config"
	"github.com/gridforge/jobtracker/pkg/logger"
)

func main() {
	cfg, path, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("metastored: failed to load configuration: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logger.INFO
	}
	logger.SetLevel(level)
	mainLog := logger.WithField("component", "metastored")
	mainLog.Info("configuration loaded", "path", path)

	backend, err := buildBackend(cfg)
	if err != nil {
		mainLog.Error("failed to build store backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Store.SocketPath), 0o755); err != nil {
		mainLog.Error("failed to create socket directory", "error", err)
		os.Exit(1)
	}

	srv := ipc.NewServer(cfg.Store.SocketPath, backend, mainLog)
	if err := srv.Start(); err != nil {
		mainLog.Error("failed to start ipc server", "error", err)
		os.Exit(1)
	}

	mainLog.Info("metastored started", "backend", cfg.Store.Backend, "socket", cfg.Store.SocketPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	mainLog.Info("metastored shutting down")
	if err := srv.Stop(); err != nil {
		mainLog.Error("error during shutdown", "error", err)
	}
}

func buildBackend(cfg *config.Config) (store.MetadataStore, error) {
	switch cfg.Store.Backend {
	case "dynamodb":
		return dynamostore.New(context.Background(), cfg.Store.DynamoDBTable)
	default:
		return memstore.New(), nil
	}
}
