package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/notesync/internal/service"
)

// device is one client installation: its own store and log file.
type device struct {
	dsn string
	log string
}

func newDevice(t *testing.T) device {
	t.Helper()
	dir := t.TempDir()
	return device{
		dsn: filepath.Join(dir, "notes.db"),
		log: filepath.Join(dir, "client.log"),
	}
}

func (d device) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{"--dsn", d.dsn, "--log-file", d.log}, args...)
	err := Execute(context.Background(), full, nil, &out)
	return out.String(), err
}

func (d device) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := d.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLI_NoteLifecycle(t *testing.T) {
	folder := t.TempDir()
	d := newDevice(t)

	out := d.mustRun(t, "folder", "set", folder)
	assert.Contains(t, out, "sync folder set to file://")

	out = d.mustRun(t, "note", "add", "-t", "groceries", "-m", "milk", "-l", "home")
	assert.Contains(t, out, "saved note")

	out = d.mustRun(t, "note", "ls")
	assert.Contains(t, out, "groceries")

	out = d.mustRun(t, "sync")
	assert.Contains(t, out, "synced file://")

	out = d.mustRun(t, "status")
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "local version")

	id := strings.Fields(strings.TrimSpace(d.mustRun(t, "note", "ls")))[0]
	d.mustRun(t, "note", "rm", id)
	assert.Contains(t, d.mustRun(t, "note", "ls"), "no notes")
}

func TestCLI_TwoDevices(t *testing.T) {
	folder := t.TempDir()
	laptop, phone := newDevice(t), newDevice(t)

	laptop.mustRun(t, "--folder", folder, "dir", "add", "work")
	laptop.mustRun(t, "--folder", folder, "label", "add", "urgent")
	laptop.mustRun(t, "--folder", folder, "sync")

	// phone has to pull before its first edit
	_, err := phone.run(t, "--folder", folder, "label", "add", "mine")
	assert.ErrorIs(t, err, service.ErrFirstSyncRequired)

	phone.mustRun(t, "--folder", folder, "sync")
	assert.Contains(t, phone.mustRun(t, "dir", "ls"), "work")
	assert.Contains(t, phone.mustRun(t, "label", "ls"), "urgent")
}

func TestCLI_EncryptedSync(t *testing.T) {
	folder := t.TempDir()
	laptop, phone := newDevice(t), newDevice(t)

	t.Setenv("NOTESYNC_SYNC_PASSWORD", "hunter2")
	laptop.mustRun(t, "--folder", folder, "encrypt", "on")
	laptop.mustRun(t, "--folder", folder, "note", "add", "-t", "secret")
	laptop.mustRun(t, "--folder", folder, "sync")

	t.Setenv("NOTESYNC_SYNC_PASSWORD", "")
	// без терминала и пароля синхронизация невозможна
	out, err := phone.run(t, "--folder", folder, "sync")
	assert.ErrorIs(t, err, service.ErrPasswordRequired)
	assert.Contains(t, out, "password required")

	t.Setenv("NOTESYNC_SYNC_PASSWORD", "hunter2")
	phone.mustRun(t, "--folder", folder, "sync")
	assert.Contains(t, phone.mustRun(t, "note", "ls"), "secret")
	assert.Contains(t, phone.mustRun(t, "--folder", folder, "status"), "encryption")
}

func TestCLI_Errors(t *testing.T) {
	d := newDevice(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "sync without folder", args: []string{"sync"}},
		{name: "bad toggle value", args: []string{"autosync", "maybe"}},
		{name: "bad folder ref", args: []string{"folder", "set", "ftp://nope"}},
		{name: "missing argument", args: []string{"note", "rm"}},
		{name: "unknown command", args: []string{"frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.run(t, tt.args...)
			assert.Error(t, err)
			assert.Contains(t, out, "⨯")
		})
	}
}

func TestCLI_Toggles(t *testing.T) {
	d := newDevice(t)

	assert.Contains(t, d.mustRun(t, "autosync", "off"), "autosync off")
	assert.Contains(t, d.mustRun(t, "status"), "off")
	assert.Contains(t, d.mustRun(t, "encrypt", "on"), "encrypt on")
}

func TestCLI_SettingAndLock(t *testing.T) {
	d := newDevice(t)

	d.mustRun(t, "setting", "theme", "dark")
	d.mustRun(t, "setting", "fontSize", "14")

	d.mustRun(t, "note", "add", "-t", "pinned")
	id := strings.Fields(strings.TrimSpace(d.mustRun(t, "note", "ls")))[0]
	assert.Contains(t, d.mustRun(t, "note", "lock", id), "locked: on")
	assert.Contains(t, d.mustRun(t, "note", "lock", id, "--off"), "locked: off")
}

func TestCLI_VersionNeedsNoStore(t *testing.T) {
	SetBuildInfo("1.2.3", "", "")
	var out bytes.Buffer
	require.NoError(t, Execute(context.Background(), []string{"version"}, nil, &out))
	assert.Contains(t, out.String(), "1.2.3")
	assert.Contains(t, out.String(), "N/A")
}
