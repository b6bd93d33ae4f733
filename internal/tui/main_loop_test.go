package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/service"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/models"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newTestServices(t *testing.T, folder, password string) *service.ClientServices {
	t.Helper()
	kv, err := store.NewBoltStore(filepath.Join(t.TempDir(), "notes.db"), logger.Nop())
	require.NoError(t, err)

	cs := service.NewClientServices(kv, config.ClientSync{
		Folder:         folder,
		DebounceWindow: time.Hour,
		RemoteTimeout:  time.Second,
		Password:       password,
	}, nil, logger.Nop())
	t.Cleanup(func() {
		cs.SyncEngine.Close()
		_ = kv.Close()
	})
	return cs
}

func newTestModel(t *testing.T, cs *service.ClientServices) mainLoopModel {
	t.Helper()
	m := newMainLoopModel(context.Background(), cs)
	m.pollEvery, m.statusFade = 0, 0
	return feed(t, m, m.cmdLoadNotes()())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// feed applies msg and then the messages produced by the returned commands.
// Timers are disabled in tests, so only the spinner and cursor blink
// commands are dropped.
func feed(t *testing.T, m mainLoopModel, msg tea.Msg) mainLoopModel {
	t.Helper()
	next, cmd := m.Update(msg)
	return runCmd(t, next.(mainLoopModel), cmd)
}

func runCmd(t *testing.T, m mainLoopModel, cmd tea.Cmd) mainLoopModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range out {
			m = runCmd(t, m, c)
		}
	case notesLoadedMsg, syncDoneMsg, noteSavedMsg, noteDeletedMsg, prefSavedMsg:
		m = feed(t, m, out)
	}
	return m
}

// typeText sends keystrokes to the focused input, ignoring blink commands.
func typeText(t *testing.T, m mainLoopModel, s string) mainLoopModel {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(runes(string(r)))
		m = next.(mainLoopModel)
	}
	return m
}

// ── list and form ────────────────────────────────────────────────────────────

func TestMainLoop_EmptyList(t *testing.T) {
	m := newTestModel(t, newTestServices(t, t.TempDir(), ""))

	assert.False(t, m.loading)
	assert.Empty(t, m.notes)
	assert.Contains(t, m.View(), "Заметок нет")
}

func TestMainLoop_CreateNote(t *testing.T) {
	cs := newTestServices(t, t.TempDir(), "")
	m := newTestModel(t, cs)

	m = feed(t, m, runes("n"))
	require.Equal(t, screenForm, m.screen)

	// "q" печатается в поле, а не закрывает программу
	m = typeText(t, m, "quick")
	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.form.focus)
	m = typeText(t, m, "body")

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, screenList, m.screen)
	require.Len(t, m.notes, 1)
	assert.Equal(t, "quick", m.notes[0].Title)
	assert.Equal(t, "body", m.notes[0].Content)

	stored, err := cs.NoteService.ListNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, m.notes[0].ID, stored[0].ID)
}

func TestMainLoop_EmptyFormIsRejected(t *testing.T) {
	m := newTestModel(t, newTestServices(t, t.TempDir(), ""))

	m = feed(t, m, runes("n"))
	m = feed(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, screenForm, m.screen)
	assert.NotEmpty(t, m.form.err)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenList, m.screen)
}

func TestMainLoop_EditKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	cs := newTestServices(t, t.TempDir(), "")
	saved, err := cs.NoteService.PutNote(ctx, models.Note{Title: "draft", Labels: []string{"work"}})
	require.NoError(t, err)
	m := newTestModel(t, cs)

	m = feed(t, m, runes("e"))
	require.Equal(t, screenForm, m.screen)
	m = typeText(t, m, "!")
	m = feed(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	require.Len(t, m.notes, 1)
	assert.Equal(t, saved.ID, m.notes[0].ID)
	assert.Equal(t, "draft!", m.notes[0].Title)
	assert.Equal(t, []string{"work"}, m.notes[0].Labels)
}

func TestMainLoop_DeleteWithConfirm(t *testing.T) {
	ctx := context.Background()
	cs := newTestServices(t, t.TempDir(), "")
	_, err := cs.NoteService.PutNote(ctx, models.Note{Title: "temp"})
	require.NoError(t, err)
	m := newTestModel(t, cs)

	m = feed(t, m, runes("d"))
	require.Equal(t, screenConfirm, m.screen)
	m = feed(t, m, runes("n"))
	assert.Equal(t, screenList, m.screen)
	assert.Len(t, m.notes, 1)

	m = feed(t, m, runes("d"))
	m = feed(t, m, runes("y"))
	assert.Equal(t, screenList, m.screen)
	assert.Empty(t, m.notes)
}

func TestMainLoop_Navigation(t *testing.T) {
	ctx := context.Background()
	cs := newTestServices(t, t.TempDir(), "")
	for _, title := range []string{"a", "b", "c"} {
		_, err := cs.NoteService.PutNote(ctx, models.Note{Title: title})
		require.NoError(t, err)
	}
	m := newTestModel(t, cs)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.idx)
	for i := 0; i < 5; i++ {
		m = feed(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 2, m.idx)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenDetail, m.screen)
	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenList, m.screen)
}

// ── sync ─────────────────────────────────────────────────────────────────────

func TestMainLoop_SyncPullsRemoteNotes(t *testing.T) {
	ctx := context.Background()
	folder := t.TempDir()

	other := newTestServices(t, folder, "")
	_, err := other.NoteService.PutNote(ctx, models.Note{Title: "from laptop"})
	require.NoError(t, err)
	require.NoError(t, other.SyncEngine.Sync(ctx))

	m := newTestModel(t, newTestServices(t, folder, ""))
	assert.Empty(t, m.notes)

	m = feed(t, m, runes("s"))
	assert.False(t, m.sync.running)
	require.Len(t, m.notes, 1)
	assert.Equal(t, "from laptop", m.notes[0].Title)
	assert.Equal(t, models.SyncStateSuccess, m.syncStatus.State)
}

func TestMainLoop_EncryptedFolderAsksPassword(t *testing.T) {
	ctx := context.Background()
	folder := t.TempDir()

	other := newTestServices(t, folder, "hunter2")
	require.NoError(t, other.Prefs.SetSyncWithPassword(ctx, true))
	_, err := other.NoteService.PutNote(ctx, models.Note{Title: "secret"})
	require.NoError(t, err)
	require.NoError(t, other.SyncEngine.Sync(ctx))

	m := newTestModel(t, newTestServices(t, folder, ""))
	m = feed(t, m, runes("s"))
	require.Equal(t, screenPassword, m.screen)
	assert.False(t, m.password.retry)

	m = typeText(t, m, "wrong")
	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, screenPassword, m.screen)
	assert.True(t, m.password.retry)

	m = typeText(t, m, "hunter2")
	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenList, m.screen)
	require.Len(t, m.notes, 1)
	assert.Equal(t, "secret", m.notes[0].Title)
}

func TestMainLoop_MalformedFolderShowsError(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, remote.MetadataFile), []byte("{broken"), 0o600))

	m := newTestModel(t, newTestServices(t, folder, ""))
	m = feed(t, m, runes("s"))
	require.Equal(t, screenError, m.screen)
	assert.Equal(t, humanizeSyncError(service.ErrRemotePayload), m.overlay.message)
	assert.True(t, m.overlay.retry)

	m = feed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenList, m.screen)
}

func TestMainLoop_RetrySyncFromOverlay(t *testing.T) {
	folder := t.TempDir()
	meta := filepath.Join(folder, remote.MetadataFile)
	require.NoError(t, os.WriteFile(meta, []byte("{broken"), 0o600))

	m := newTestModel(t, newTestServices(t, folder, ""))
	m = feed(t, m, runes("s"))
	require.Equal(t, screenError, m.screen)

	// папку починили, повтор проходит
	require.NoError(t, os.Remove(meta))
	m = feed(t, m, runes("s"))
	assert.Equal(t, screenList, m.screen)
	assert.Equal(t, models.SyncStateSuccess, m.syncStatus.State)
}

func TestMainLoop_ToggleAutoSync(t *testing.T) {
	cs := newTestServices(t, t.TempDir(), "")
	m := newTestModel(t, cs)
	require.False(t, m.autoSync)

	m = feed(t, m, runes("a"))
	assert.True(t, m.autoSync)
	assert.True(t, cs.Prefs.AutoSync(context.Background()))
}

func TestMainLoop_QuitKeys(t *testing.T) {
	m := newTestModel(t, newTestServices(t, t.TempDir(), ""))

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = feed(t, m, runes("n"))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHumanizeSyncError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: service.ErrNoFolder, want: "Папка синхронизации не выбрана"},
		{err: assert.AnError, want: assert.AnError.Error()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeSyncError(tt.err))
	}
}

func TestFitText(t *testing.T) {
	assert.Equal(t, "abc", fitText("abc", 5))
	assert.Equal(t, "ab...", fitText("abcdefgh", 5))
	assert.Equal(t, "заме...", fitText("заметка длинная", 7))
}
