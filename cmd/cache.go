package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// CachePrune deletes persisted palettes older than --max-age, defaulting to cache.max_age.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	maxAge := r.config.Cache.MaxAge.Duration
	if cmd.IsSet("max-age") {
		maxAge = cmd.Duration("max-age")
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return fmt.Errorf("failed to open palette store: %w", err)
	}
	defer closeStore()

	removed, err := store.Prune(maxAge)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed %d palettes older than %s\n", removed, maxAge)
}

// CacheStats reports how many palettes are stored and how many are past cache.max_age.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return fmt.Errorf("failed to open palette store: %w", err)
	}
	defer closeStore()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, false)
	}

	r.writePlainHeader("Palette Cache")
	r.writePlain("Database: %s\n", r.config.Database.Path)
	r.writePlain("Stored: %d\n", stats.Total)
	r.writePlain("Stale: %d (max age %s)\n", stats.Stale, stats.MaxAge)
	return nil
}
