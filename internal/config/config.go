// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// client and the folder server. It is populated by merging values from
// environment variables, command-line flags, an optional JSON/YAML file and
// finally built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings.
	App App `envPrefix:"APP_"`

	// Storage holds the local key/value store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds the sync engine settings of the client.
	Sync Sync `envPrefix:"SYNC_"`

	// Server holds the folder server settings.
	Server Server `envPrefix:"SERVER_"`

	// Log holds log output settings.
	Log Log `envPrefix:"LOG_"`

	// FilePath is the optional path to a JSON or YAML configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	FilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// SyncPassword encrypts the synchronized payload. When empty the client
	// prompts for it on demand.
	// Env: APP_SYNC_PASSWORD
	SyncPassword string `env:"SYNC_PASSWORD"`

	// Version is the semantic version string of the running application.
	// Exposed by the folder server via the /api/version/ endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for the local store.
type Storage struct {
	// DB holds the local database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local key/value store.
type DB struct {
	// DSN selects the backend and file: "bolt:///path/notes.db",
	// "sqlite:///path/notes.sqlite" or a bare path whose extension decides.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Sync holds the sync engine settings.
type Sync struct {
	// Folder is the serialized reference of the sync folder, used when no
	// folder has been chosen through the client yet.
	// Env: SYNC_FOLDER
	Folder string `env:"FOLDER"`

	// DebounceWindow is the quiet period that coalesces bursts of local
	// edits into one sync round.
	// Env: SYNC_DEBOUNCE_WINDOW
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`

	// RemoteTimeout bounds every single remote folder call.
	// Env: SYNC_REMOTE_TIMEOUT
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT"`

	// AutoSync is the default of the autoSync preference ("true"/"false")
	// used until the user toggles it.
	// Env: SYNC_AUTO_SYNC
	AutoSync string `env:"AUTO_SYNC"`

	// Schedule is the cron spec of the periodic background sync job
	// (e.g. "@every 5m").
	// Env: SYNC_SCHEDULE
	Schedule string `env:"SCHEDULE"`

	// TokenSignKey signs bearer tokens sent to HTTP sync folders.
	// Env: SYNC_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim of bearer tokens sent to HTTP folders.
	// Env: SYNC_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// Device names this client in bearer tokens. Defaults to the host name.
	// Env: SYNC_DEVICE
	Device string `env:"DEVICE"`
}

// Server holds network and storage settings of the folder server.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RootDir is the directory served to sync clients.
	// Env: SERVER_ROOT_DIR
	RootDir string `env:"ROOT_DIR"`

	// TokenSignKey verifies bearer tokens. Authentication is disabled when
	// empty.
	// Env: SERVER_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim of bearer tokens.
	// Env: SERVER_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// MaxFileSize caps the body of one uploaded file, in bytes.
	// Env: SERVER_MAX_FILE_SIZE
	MaxFileSize int64 `env:"MAX_FILE_SIZE"`
}

// Log holds log output settings.
type Log struct {
	// Path of the client log file. Defaults to logs/notesync.log next to
	// the executable.
	// Env: LOG_PATH
	Path string `env:"PATH"`

	// Level is a zerolog level name ("debug", "info", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`
}

// Defaults applied after every other source.
const (
	DefaultDebounceWindow = time.Minute
	DefaultRemoteTimeout  = 30 * time.Second
	DefaultSchedule       = "@every 5m"
	DefaultTokenIssuer    = "notesync"
	DefaultHTTPAddress    = "localhost:8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxFileSize    = 256 << 20
)

// DefaultDSN places the local store in the user config directory.
func DefaultDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "notesync.db"
	}
	return filepath.Join(dir, "notesync", "notes.db")
}

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App:     App{Version: "dev"},
		Storage: Storage{DB: DB{DSN: DefaultDSN()}},
		Sync: Sync{
			DebounceWindow: DefaultDebounceWindow,
			RemoteTimeout:  DefaultRemoteTimeout,
			AutoSync:       "true",
			Schedule:       DefaultSchedule,
			TokenIssuer:    DefaultTokenIssuer,
		},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			TokenIssuer:    DefaultTokenIssuer,
			RequestTimeout: DefaultRequestTimeout,
			MaxFileSize:    DefaultMaxFileSize,
		},
		Log: Log{Level: "debug"},
	}
}

// GetStructuredConfig loads and merges the configuration from all available
// sources. For every field the first source that sets it wins:
//  1. Environment variables
//  2. Command-line flags (flagCfg, may be nil)
//  3. JSON or YAML file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig(flagCfg *StructuredConfig) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flagCfg).
		withFile().
		withDefaults().
		build()
}
