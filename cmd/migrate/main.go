package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"graphmem/internal/graph"
	"graphmem/pkg/config"
	apperrors "graphmem/pkg/errors"
	"graphmem/pkg/logger"
)

// One-shot schema bootstrap: declares the store's constraints and indexes and
// exits. Safe to re-run; every statement is declarative.
func main() {
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting graph schema bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	store, err := graph.Open(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		log.Fatal("Failed to open graph store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Driver().VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity",
			zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
	}

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("Schema bootstrap failed", zap.Error(err))
	}

	log.Info("Schema bootstrap completed")
}
