package repositoryImp

import (
	"fmt"

	"go.uber.org/zap"

	"canaswarm/config"
	"canaswarm/database"
	"canaswarm/pkg/storage/repository"
)

// Open builds the store selected by cfg.StorageBackend. A medium that cannot
// be opened is an error; there is no fallback backend.
func Open(cfg config.AppConfig, log *zap.Logger) (repository.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemoryStore(cfg.DataDir, log)
	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.DBPath, log)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, config.BackendSQLite, cfg.DBPath), nil
	case config.BackendPostgres:
		db, err := database.OpenPostgres(cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, config.BackendPostgres, "DATABASE_URL"), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
