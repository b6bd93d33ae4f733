package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_JSON(t *testing.T) {
	path := writeTempConfig(t, "notesync.json", `{
		"app": {"sync_password": "pw", "version": "2.0.0"},
		"storage": {"db": {"dsn": "bolt:///tmp/notes.db"}},
		"sync": {
			"folder": "file:///mnt/notes",
			"debounce_window": "90s",
			"remote_timeout": 1000000000,
			"auto_sync": "true",
			"schedule": "@hourly"
		},
		"server": {"http_address": "localhost:8081", "root_dir": "/srv", "request_timeout": "15s"},
		"log": {"level": "error"}
	}`)

	cfg, err := parseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "pw", cfg.App.SyncPassword)
	assert.Equal(t, "2.0.0", cfg.App.Version)
	assert.Equal(t, "bolt:///tmp/notes.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "file:///mnt/notes", cfg.Sync.Folder)
	assert.Equal(t, 90*time.Second, cfg.Sync.DebounceWindow)
	assert.Equal(t, time.Second, cfg.Sync.RemoteTimeout)
	assert.Equal(t, "@hourly", cfg.Sync.Schedule)
	assert.Equal(t, "localhost:8081", cfg.Server.HTTPAddress)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Empty(t, cfg.FilePath)
}

func TestParseFile_YAML(t *testing.T) {
	path := writeTempConfig(t, "notesync.yml", `
sync:
  folder: http://127.0.0.1:8080/files
  debounce_window: 2m
  token_sign_key: secret
server:
  root_dir: /srv/notes
`)

	cfg, err := parseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/files", cfg.Sync.Folder)
	assert.Equal(t, 2*time.Minute, cfg.Sync.DebounceWindow)
	assert.Equal(t, "secret", cfg.Sync.TokenSignKey)
	assert.Equal(t, "/srv/notes", cfg.Server.RootDir)
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "malformed json", file: "bad.json", body: "{not json"},
		{name: "malformed yaml", file: "bad.yaml", body: "sync: [unclosed"},
		{name: "bad duration", file: "dur.json", body: `{"sync": {"debounce_window": "soon"}}`},
		{name: "duration of wrong type", file: "dur2.json", body: `{"sync": {"remote_timeout": true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFile(writeTempConfig(t, tt.file, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(Duration(1500 * time.Millisecond))
	require.NoError(t, err)
	assert.JSONEq(t, `"1.5s"`, string(out))
}
