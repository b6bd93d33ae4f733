package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFlags_AllValues(t *testing.T) {
	fs := pflag.NewFlagSet("notesync", pflag.ContinueOnError)
	flags := RegisterFlags(fs)

	err := fs.Parse([]string{
		"-a", "127.0.0.1:9000",
		"--config", "/etc/notesync.json",
		"-d", "sqlite:///tmp/notes.sqlite",
		"-f", "http://127.0.0.1:9000/files",
		"--root", "/srv/notes",
		"--log-file", "/tmp/n.log",
		"--log-level", "warn",
		"--token-sign-key", "k",
		"--debounce", "2s",
		"--remote-timeout", "5s",
		"--schedule", "@every 1h",
	})
	require.NoError(t, err)

	cfg := flags.Config()
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.HTTPAddress)
	assert.Equal(t, "/etc/notesync.json", cfg.FilePath)
	assert.Equal(t, "sqlite:///tmp/notes.sqlite", cfg.Storage.DB.DSN)
	assert.Equal(t, "http://127.0.0.1:9000/files", cfg.Sync.Folder)
	assert.Equal(t, "/srv/notes", cfg.Server.RootDir)
	assert.Equal(t, "/tmp/n.log", cfg.Log.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "k", cfg.Sync.TokenSignKey)
	assert.Equal(t, "k", cfg.Server.TokenSignKey)
	assert.Equal(t, 2*time.Second, cfg.Sync.DebounceWindow)
	assert.Equal(t, 5*time.Second, cfg.Sync.RemoteTimeout)
	assert.Equal(t, "@every 1h", cfg.Sync.Schedule)
}

func TestRegisterFlags_UnsetFlagsStayZero(t *testing.T) {
	fs := pflag.NewFlagSet("notesync", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg := flags.Config()
	assert.Empty(t, cfg.Server.HTTPAddress)
	assert.Zero(t, cfg.Sync.DebounceWindow)
	assert.Empty(t, cfg.FilePath)
}

func TestRegisterFlags_InvalidAddress(t *testing.T) {
	fs := pflag.NewFlagSet("notesync", pflag.ContinueOnError)
	RegisterFlags(fs)

	err := fs.Parse([]string{"-a", "not-an-address"})
	require.Error(t, err)
}

func TestNilFlagsConfig(t *testing.T) {
	var f *Flags
	assert.Nil(t, f.Config())
}

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  string
		wantHost string
		wantPort int
	}{
		{name: "localhost", input: "localhost:8080", wantHost: "localhost", wantPort: 8080},
		{name: "ipv4", input: "127.0.0.1:9090", wantHost: "127.0.0.1", wantPort: 9090},
		{name: "any interface", input: ":8080", wantHost: "", wantPort: 8080},
		{name: "missing colon", input: "localhost8080", wantErr: "need address in a form `host:port`"},
		{name: "too many colons", input: "a:b:c", wantErr: "need address in a form `host:port`"},
		{name: "non-numeric port", input: "localhost:abc", wantErr: "invalid syntax"},
		{name: "zero port", input: "localhost:0", wantErr: "port number must be in range"},
		{name: "port too large", input: "localhost:70000", wantErr: "port number must be in range"},
		{name: "bad host", input: "nas.local:8080", wantErr: "incorrect IP-address provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := &NetAddress{}
			err := addr.Set(tt.input)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, addr.Host)
			assert.Equal(t, tt.wantPort, addr.Port)
			assert.Equal(t, tt.input, addr.String())
		})
	}
}
