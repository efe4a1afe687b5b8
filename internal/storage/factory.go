package storage

import (
	"fmt"

	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/internal/geo"
	"github.com/OCAP2/boarding/internal/logging"
	gormstorage "github.com/OCAP2/boarding/internal/storage/gorm"
	"github.com/OCAP2/boarding/internal/storage/memory"
	sqlitestorage "github.com/OCAP2/boarding/internal/storage/sqlite"
	"github.com/OCAP2/boarding/internal/storage/websocket"
)

var (
	_ Backend             = (*memory.Backend)(nil)
	_ Uploadable          = (*memory.Backend)(nil)
	_ Backend             = (*gormstorage.Backend)(nil)
	_ PerformanceRecorder = (*gormstorage.Backend)(nil)
	_ Backend             = (*sqlitestorage.Backend)(nil)
	_ PerformanceRecorder = (*sqlitestorage.Backend)(nil)
	_ Backend             = (*websocket.Backend)(nil)
	_ PerformanceRecorder = (*websocket.Backend)(nil)
)

// Dependencies are shared by the backends that need them.
type Dependencies struct {
	Projector  *geo.Projector
	LogManager *logging.SlogManager
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}

	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "postgres":
		return gormstorage.New(gormstorage.Dependencies{
			DBConfig:   cfg.Postgres,
			Projector:  deps.Projector,
			LogManager: deps.LogManager,
		}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			OutputDir:    cfg.SQLite.OutputDir,
			DumpInterval: cfg.SQLite.DumpInterval,
		}, deps.Projector, deps.LogManager)
	case "websocket":
		if cfg.WebSocket.URL == "" {
			return nil, fmt.Errorf("websocket backend needs storage.websocket.url")
		}
		return websocket.New(websocket.Config{
			URL:    cfg.WebSocket.URL,
			Secret: cfg.WebSocket.Secret,
		}, deps.LogManager.Logger()), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
