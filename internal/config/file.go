package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig mirrors StructuredConfig with the snake_case keys used
// in config files. Files ending in .yaml or .yml are decoded as YAML,
// everything else as JSON.
type StructuredFileConfig struct {
	App struct {
		SyncPassword string `json:"sync_password" yaml:"sync_password"`
		Version      string `json:"version" yaml:"version"`
	} `json:"app,omitempty" yaml:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn"`
		} `json:"db,omitempty" yaml:"db,omitempty"`
	} `json:"storage,omitempty" yaml:"storage,omitempty"`

	Sync struct {
		Folder         string   `json:"folder" yaml:"folder"`
		DebounceWindow Duration `json:"debounce_window" yaml:"debounce_window"`
		RemoteTimeout  Duration `json:"remote_timeout" yaml:"remote_timeout"`
		AutoSync       string   `json:"auto_sync" yaml:"auto_sync"`
		Schedule       string   `json:"schedule" yaml:"schedule"`
		TokenSignKey   string   `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer    string   `json:"token_issuer" yaml:"token_issuer"`
		Device         string   `json:"device" yaml:"device"`
	} `json:"sync,omitempty" yaml:"sync,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RootDir        string   `json:"root_dir" yaml:"root_dir"`
		TokenSignKey   string   `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer    string   `json:"token_issuer" yaml:"token_issuer"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		MaxFileSize    int64    `json:"max_file_size" yaml:"max_file_size"`
	} `json:"server,omitempty" yaml:"server,omitempty"`

	Log struct {
		Path  string `json:"path" yaml:"path"`
		Level string `json:"level" yaml:"level"`
	} `json:"log,omitempty" yaml:"log,omitempty"`
}

func parseFile(path string) (*StructuredConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return &StructuredConfig{
		App: App{
			SyncPassword: fileCfg.App.SyncPassword,
			Version:      fileCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{DSN: fileCfg.Storage.DB.DSN},
		},
		Sync: Sync{
			Folder:         fileCfg.Sync.Folder,
			DebounceWindow: time.Duration(fileCfg.Sync.DebounceWindow),
			RemoteTimeout:  time.Duration(fileCfg.Sync.RemoteTimeout),
			AutoSync:       fileCfg.Sync.AutoSync,
			Schedule:       fileCfg.Sync.Schedule,
			TokenSignKey:   fileCfg.Sync.TokenSignKey,
			TokenIssuer:    fileCfg.Sync.TokenIssuer,
			Device:         fileCfg.Sync.Device,
		},
		Server: Server{
			HTTPAddress:    fileCfg.Server.HTTPAddress,
			RootDir:        fileCfg.Server.RootDir,
			TokenSignKey:   fileCfg.Server.TokenSignKey,
			TokenIssuer:    fileCfg.Server.TokenIssuer,
			RequestTimeout: time.Duration(fileCfg.Server.RequestTimeout),
			MaxFileSize:    fileCfg.Server.MaxFileSize,
		},
		Log: Log{
			Path:  fileCfg.Log.Path,
			Level: fileCfg.Log.Level,
		},
	}, nil
}

// Duration is a wrapper around time.Duration that decodes from strings like
// "1h" or "30s" in both JSON and YAML. Bare numbers are nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}

	return d.set(v)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) set(v any) error {
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
	case int:
		*d = Duration(time.Duration(value))
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}

	return nil
}
