package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/internal/geo"
	"github.com/OCAP2/boarding/internal/logging"
	"github.com/OCAP2/boarding/internal/storage"
)

func createStorageBackend(storageCfg config.StorageConfig, proj *geo.Projector, lm *logging.SlogManager) (storage.Backend, error) {
	if storageCfg.Type == "websocket" && storageCfg.WebSocket.URL == "" {
		storageCfg.WebSocket.URL = httpToWS(viper.GetString("api.serverUrl")) + "/ingest"
		if storageCfg.WebSocket.Secret == "" {
			storageCfg.WebSocket.Secret = viper.GetString("api.apiKey")
		}
	}

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		Projector:  proj,
		LogManager: lm,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage backend: %w", storageCfg.Type, err)
	}
	lm.Logger().Info("Storage backend created", "type", storageCfg.Type)
	return backend, nil
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
