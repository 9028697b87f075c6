package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AdamBeresnev/bracket-api/internal/config"
	"github.com/AdamBeresnev/bracket-api/internal/db"
	"github.com/AdamBeresnev/bracket-api/internal/store"
	"github.com/jmoiron/sqlx"
)

// openBackend returns the configured document backend. The SQL connection is
// also returned for the sqlite session store, nil for the other backends.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, *sqlx.DB, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryBackend(), nil, nil

	case config.BackendFile:
		backend, err := store.NewFileBackend(cfg.DataDir)
		return backend, nil, err

	case config.BackendBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		backend, err := store.OpenBolt(filepath.Join(cfg.DataDir, "documents.db"))
		return backend, nil, err

	case config.BackendS3:
		backend, err := store.NewS3Backend(ctx, store.S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		return backend, nil, err

	case config.BackendSQL:
		database, err := db.InitDB(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(database.DB, cfg.DBDriver); err != nil {
			database.Close()
			return nil, nil, err
		}
		return store.NewSQLBackend(database), database, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
