package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/internal/storage"
	gormstorage "github.com/OCAP2/boarding/internal/storage/gorm"
	"github.com/OCAP2/boarding/internal/storage/memory"
	sqlitestorage "github.com/OCAP2/boarding/internal/storage/sqlite"
	"github.com/OCAP2/boarding/internal/storage/websocket"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		check   func(t *testing.T, b storage.Backend)
		wantErr string
	}{
		{
			name: "memory",
			cfg:  config.StorageConfig{Type: "memory", Memory: config.MemoryConfig{OutputDir: t.TempDir()}},
			check: func(t *testing.T, b storage.Backend) {
				assert.IsType(t, &memory.Backend{}, b)
				_, ok := b.(storage.Uploadable)
				assert.True(t, ok)
			},
		},
		{
			name: "postgres",
			cfg:  config.StorageConfig{Type: "postgres"},
			check: func(t *testing.T, b storage.Backend) {
				assert.IsType(t, &gormstorage.Backend{}, b)
				_, ok := b.(storage.PerformanceRecorder)
				assert.True(t, ok)
			},
		},
		{
			name: "sqlite",
			cfg:  config.StorageConfig{Type: "sqlite", SQLite: config.SQLiteConfig{OutputDir: t.TempDir()}},
			check: func(t *testing.T, b storage.Backend) {
				assert.IsType(t, &sqlitestorage.Backend{}, b)
				_, ok := b.(storage.Uploadable)
				assert.False(t, ok)
			},
		},
		{
			name: "websocket",
			cfg:  config.StorageConfig{Type: "websocket", WebSocket: config.WebSocketConfig{URL: "ws://localhost:5000/ingest"}},
			check: func(t *testing.T, b storage.Backend) {
				assert.IsType(t, &websocket.Backend{}, b)
			},
		},
		{
			name:    "websocket without url",
			cfg:     config.StorageConfig{Type: "websocket"},
			wantErr: "storage.websocket.url",
		},
		{
			name:    "unknown",
			cfg:     config.StorageConfig{Type: "mongo"},
			wantErr: "unknown storage type: mongo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := storage.NewBackend(tt.cfg, storage.Dependencies{})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, b)
		})
	}
}
