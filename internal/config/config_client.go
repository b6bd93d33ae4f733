package config

import (
	"fmt"
	"os"
	"time"
)

// ClientSync holds the sync engine settings of the client.
type ClientSync struct {
	// Folder is the default sync folder reference.
	Folder string
	// DebounceWindow coalesces bursts of edits into one round.
	DebounceWindow time.Duration
	// RemoteTimeout bounds every single remote folder call.
	RemoteTimeout time.Duration
	// AutoSync is the default autoSync preference.
	AutoSync bool
	// Schedule is the cron spec of the periodic job.
	Schedule string
	// Password encrypts the payload; empty means "ask when needed".
	Password string
	// TokenSignKey and TokenIssuer mint bearer tokens for HTTP folders.
	TokenSignKey string
	TokenIssuer  string
	// Device is the subject of minted tokens.
	Device string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DSN selects the local store backend and file.
	DSN string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	Sync    ClientSync
	Storage ClientStorage
	Log     Log
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig(flagCfg *StructuredConfig) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(flagCfg)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Sync: ClientSync{
			Folder:         cfg.Sync.Folder,
			DebounceWindow: cfg.Sync.DebounceWindow,
			RemoteTimeout:  cfg.Sync.RemoteTimeout,
			AutoSync:       cfg.Sync.AutoSync == "true",
			Schedule:       cfg.Sync.Schedule,
			Password:       cfg.App.SyncPassword,
			TokenSignKey:   cfg.Sync.TokenSignKey,
			TokenIssuer:    cfg.Sync.TokenIssuer,
			Device:         cfg.Sync.Device,
		},
		Storage: ClientStorage{DSN: cfg.Storage.DB.DSN},
		Log:     cfg.Log,
	}

	if clientCfg.Sync.Device == "" {
		clientCfg.Sync.Device, _ = os.Hostname()
	}

	return clientCfg, clientCfg.validate()
}
