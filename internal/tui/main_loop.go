package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/notesync/internal/crypto"
	"github.com/MKhiriev/notesync/internal/service"
	"github.com/MKhiriev/notesync/models"
)

type screen int

const (
	screenList screen = iota
	screenDetail
	screenForm
	screenConfirm
	screenPassword
	screenError
)

const (
	statusPollInterval = time.Second
	statusTTL          = 3 * time.Second
)

type mainLoopModel struct {
	ctx      context.Context
	services *service.ClientServices

	notes   []models.Note
	folders map[string]string
	idx     int
	loading bool

	screen   screen
	form     noteFormModel
	password passwordModel
	confirm  confirmModel
	overlay  errorOverlayModel

	sync       syncModel
	syncStatus models.SyncStatus
	autoSync   bool
	status     string

	// zero disables the timer
	pollEvery  time.Duration
	statusFade time.Duration
}

func newMainLoopModel(ctx context.Context, services *service.ClientServices) mainLoopModel {
	return mainLoopModel{
		ctx:        ctx,
		services:   services,
		loading:    true,
		sync:       newSyncModel(),
		syncStatus: services.SyncEngine.Status(),
		autoSync:   services.Prefs.AutoSync(ctx),
		pollEvery:  statusPollInterval,
		statusFade: statusTTL,
	}
}

func (m mainLoopModel) Init() tea.Cmd {
	return tea.Batch(m.cmdLoadNotes(), m.sync.spinner.Tick, m.cmdStatusTick())
}

func (m mainLoopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.showError(msg.err), nil
		}
		m.notes = msg.notes
		m.folders = msg.folders
		m.clampIdx()
		return m, nil

	case syncDoneMsg:
		m.sync.running = false
		m.syncStatus = m.services.SyncEngine.Status()
		if msg.err != nil {
			if needsPassword(msg.err) {
				m.screen = screenPassword
				m.password = newPasswordModel(errors.Is(msg.err, crypto.ErrDecryptionFailed))
				return m, nil
			}
			m = m.showError(msg.err)
			m.overlay.retry = true
			return m, nil
		}
		m.status = "Синхронизация завершена"
		return m, tea.Batch(m.cmdLoadNotes(), m.cmdClearStatus())

	case noteSavedMsg:
		if msg.err != nil {
			m.form.err = humanizeSyncError(msg.err)
			return m, nil
		}
		m.screen = screenList
		m.status = "Заметка сохранена"
		return m, tea.Batch(m.cmdLoadNotes(), m.cmdClearStatus())

	case noteDeletedMsg:
		m.screen = screenList
		if msg.err != nil {
			return m.showError(msg.err), nil
		}
		m.status = "Заметка удалена"
		return m, tea.Batch(m.cmdLoadNotes(), m.cmdClearStatus())

	case prefSavedMsg:
		if msg.err != nil {
			return m.showError(msg.err), nil
		}
		m.autoSync = m.services.Prefs.AutoSync(m.ctx)
		m.status = msg.status
		return m, m.cmdClearStatus()

	case statusTickMsg:
		prev := m.syncStatus
		m.syncStatus = m.services.SyncEngine.Status()
		// фоновый раунд мог принести чужие правки
		if m.syncStatus.LastSynced != prev.LastSynced && !m.sync.running {
			return m, tea.Batch(m.cmdLoadNotes(), m.cmdStatusTick())
		}
		return m, m.cmdStatusTick()

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sync.spinner, cmd = m.sync.spinner.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.forwardToInputs(msg)
	}
	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenForm:
		return m.updateForm(keyMsg)
	case screenPassword:
		return m.updatePassword(keyMsg)
	case screenConfirm:
		return m.updateConfirm(keyMsg)
	case screenError:
		switch {
		case key.Matches(keyMsg, keys.enter, keys.esc):
			m.screen = screenList
		case m.overlay.retry && key.Matches(keyMsg, keys.sync):
			m.screen = screenList
			return m.startSync()
		}
		return m, nil
	case screenDetail:
		return m.updateDetail(keyMsg)
	default:
		return m.updateList(keyMsg)
	}
}

func (m mainLoopModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(msg, keys.down):
		if m.idx < len(m.notes)-1 {
			m.idx++
		}
	case key.Matches(msg, keys.enter):
		if _, ok := m.current(); ok {
			m.screen = screenDetail
		}
	case key.Matches(msg, keys.newItem):
		m.form = newNoteFormModel(nil)
		m.screen = screenForm
	case key.Matches(msg, keys.edit):
		return m.startEdit()
	case key.Matches(msg, keys.delete):
		return m.startDelete()
	case key.Matches(msg, keys.copy):
		return m.copyCurrent()
	case key.Matches(msg, keys.sync):
		return m.startSync()
	case key.Matches(msg, keys.autoSync):
		return m, m.cmdToggleAutoSync()
	case key.Matches(msg, keys.encrypt):
		return m, m.cmdToggleEncryption()
	}
	return m, nil
}

func (m mainLoopModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc, keys.quit):
		m.screen = screenList
	case key.Matches(msg, keys.edit):
		return m.startEdit()
	case key.Matches(msg, keys.delete):
		return m.startDelete()
	case key.Matches(msg, keys.copy):
		return m.copyCurrent()
	}
	return m, nil
}

func (m mainLoopModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.screen = screenList
		return m, nil
	case key.Matches(msg, keys.tab):
		m.form = m.form.toggleFocus()
		return m, nil
	case key.Matches(msg, keys.save):
		note, ok := m.form.toNote()
		if !ok {
			m.form.err = "пустая заметка"
			return m, nil
		}
		return m, m.cmdSaveNote(note)
	case key.Matches(msg, keys.enter) && m.form.focus == 0:
		m.form = m.form.toggleFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m mainLoopModel) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.screen = screenList
		m.status = "Синхронизация отменена"
		return m, m.cmdClearStatus()
	case key.Matches(msg, keys.enter):
		password := m.password.input.Value()
		if password == "" {
			return m, nil
		}
		m.services.SyncEngine.SetPassword(password)
		m.screen = screenList
		return m.startSync()
	}

	var cmd tea.Cmd
	m.password.input, cmd = m.password.input.Update(msg)
	return m, cmd
}

func (m mainLoopModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		note, ok := m.current()
		if !ok {
			m.screen = screenList
			return m, nil
		}
		return m, m.cmdDeleteNote(note.ID)
	case key.Matches(msg, keys.no):
		m.screen = screenList
	}
	return m, nil
}

// forwardToInputs passes non-key messages (cursor blink) to the focused input.
func (m mainLoopModel) forwardToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenForm:
		m.form, cmd = m.form.Update(msg)
	case screenPassword:
		m.password.input, cmd = m.password.input.Update(msg)
	}
	return m, cmd
}

func (m mainLoopModel) startEdit() (tea.Model, tea.Cmd) {
	note, ok := m.current()
	if !ok {
		m.status = "Заметок нет"
		return m, nil
	}
	m.form = newNoteFormModel(&note)
	m.screen = screenForm
	return m, nil
}

func (m mainLoopModel) startDelete() (tea.Model, tea.Cmd) {
	note, ok := m.current()
	if !ok {
		m.status = "Заметок нет"
		return m, nil
	}
	m.confirm = confirmModel{note: note}
	m.screen = screenConfirm
	return m, nil
}

func (m mainLoopModel) startSync() (tea.Model, tea.Cmd) {
	if m.sync.running {
		return m, nil
	}
	m.sync.running = true
	m.status = ""
	return m, tea.Batch(m.cmdSync(), m.sync.spinner.Tick)
}

func (m mainLoopModel) copyCurrent() (tea.Model, tea.Cmd) {
	note, ok := m.current()
	if !ok {
		m.status = "Нечего копировать"
		return m, nil
	}
	if err := clipboard.WriteAll(note.Content); err != nil {
		return m.showError(fmt.Errorf("ошибка копирования: %w", err)), nil
	}
	m.status = "Скопировано"
	return m, m.cmdClearStatus()
}

func (m mainLoopModel) showError(err error) mainLoopModel {
	m.overlay = errorOverlayModel{message: humanizeSyncError(err)}
	m.screen = screenError
	return m
}

func (m *mainLoopModel) clampIdx() {
	if m.idx >= len(m.notes) {
		m.idx = len(m.notes) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func (m mainLoopModel) current() (models.Note, bool) {
	if len(m.notes) == 0 || m.idx < 0 || m.idx >= len(m.notes) {
		return models.Note{}, false
	}
	return m.notes[m.idx], true
}

// ── commands ─────────────────────────────────────────────────────────────────

func (m mainLoopModel) cmdLoadNotes() tea.Cmd {
	ctx := m.ctx
	svc := m.services.NoteService

	return func() tea.Msg {
		notes, err := svc.ListNotes(ctx)
		if err != nil {
			return notesLoadedMsg{err: err}
		}
		folders, err := svc.ListFolders(ctx)
		if err != nil {
			return notesLoadedMsg{err: err}
		}
		names := make(map[string]string, len(folders))
		for _, f := range folders {
			names[f.ID] = f.Name
		}
		return notesLoadedMsg{notes: notes, folders: names}
	}
}

func (m mainLoopModel) cmdSync() tea.Cmd {
	ctx := m.ctx
	engine := m.services.SyncEngine

	return func() tea.Msg {
		return syncDoneMsg{err: engine.Sync(ctx)}
	}
}

func (m mainLoopModel) cmdSaveNote(note models.Note) tea.Cmd {
	ctx := m.ctx
	svc := m.services.NoteService

	return func() tea.Msg {
		_, err := svc.PutNote(ctx, note)
		return noteSavedMsg{err: err}
	}
}

func (m mainLoopModel) cmdDeleteNote(id string) tea.Cmd {
	ctx := m.ctx
	svc := m.services.NoteService

	return func() tea.Msg {
		return noteDeletedMsg{err: svc.DeleteNote(ctx, id)}
	}
}

func (m mainLoopModel) cmdToggleAutoSync() tea.Cmd {
	ctx := m.ctx
	prefs := m.services.Prefs
	on := !m.autoSync

	return func() tea.Msg {
		status := "Автосинхронизация выключена"
		if on {
			status = "Автосинхронизация включена"
		}
		return prefSavedMsg{status: status, err: prefs.SetAutoSync(ctx, on)}
	}
}

func (m mainLoopModel) cmdToggleEncryption() tea.Cmd {
	ctx := m.ctx
	prefs := m.services.Prefs
	engine := m.services.SyncEngine

	return func() tea.Msg {
		on := !prefs.SyncWithPassword(ctx)
		if err := prefs.SetSyncWithPassword(ctx, on); err != nil {
			return prefSavedMsg{err: err}
		}
		if !on {
			return prefSavedMsg{status: "Шифрование выключено (действует, пока папка не зашифрована)"}
		}
		engine.ScheduleSync(false)
		return prefSavedMsg{status: "Шифрование включено со следующей синхронизации"}
	}
}

func (m mainLoopModel) cmdStatusTick() tea.Cmd {
	if m.pollEvery <= 0 {
		return nil
	}
	return tea.Tick(m.pollEvery, func(time.Time) tea.Msg { return statusTickMsg{} })
}

func (m mainLoopModel) cmdClearStatus() tea.Cmd {
	if m.statusFade <= 0 {
		return nil
	}
	return tea.Tick(m.statusFade, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// ── views ────────────────────────────────────────────────────────────────────

func (m mainLoopModel) View() string {
	switch m.screen {
	case screenForm:
		return m.form.View()
	case screenPassword:
		return appStyle.Render(m.password.View())
	case screenConfirm:
		return appStyle.Render(m.confirm.View())
	case screenError:
		return appStyle.Render(m.overlay.View())
	case screenDetail:
		return m.viewDetail()
	}
	return m.viewList()
}

func (m mainLoopModel) viewList() string {
	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString("Загрузка заметок...\n")
	case len(m.notes) == 0:
		b.WriteString("Заметок нет\n")
	default:
		b.WriteString("   Заголовок                    │ Папка          │ Изменена\n")
		b.WriteString("───────────────────────────────┼────────────────┼────────────────────\n")
		for i, n := range m.notes {
			row := fmt.Sprintf("%-30s │ %-14s │ %s",
				fitText(valueOrDash(n.Title), 30),
				fitText(valueOrDash(m.folderName(n.FolderID)), 14),
				formatMillis(n.UpdatedAt),
			)
			if i == m.idx {
				b.WriteString("> " + selectedStyle.Render(row) + "\n")
			} else {
				b.WriteString("  " + row + "\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(m.sync.View(m.syncStatus, m.autoSync))
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}

	return renderPage(
		"ЗАМЕТКИ",
		b.String(),
		"n: новая │ enter: открыть │ e: изм. │ d: уд. │ s: синхр. │ a: автосинхр. │ p: шифр. │ q: выход",
	)
}

func (m mainLoopModel) viewDetail() string {
	note, ok := m.current()
	if !ok {
		return renderPage("ЗАМЕТКА", "Заметка не найдена", "esc: назад")
	}

	out := "Папка     : " + valueOrDash(m.folderName(note.FolderID)) + "\n"
	if len(note.Labels) > 0 {
		out += "Метки     : " + strings.Join(note.Labels, ", ") + "\n"
	}
	out += "Создана   : " + formatMillis(note.CreatedAt) + "\n"
	out += "Изменена  : " + formatMillis(note.UpdatedAt) + "\n\n"
	out += note.Content

	return renderPage(valueOrDash(note.Title), out, "esc: назад │ e: изм. │ d: уд. │ c: копировать текст")
}

func (m mainLoopModel) folderName(id *string) string {
	if id == nil {
		return ""
	}
	if name, ok := m.folders[*id]; ok {
		return name
	}
	return *id
}
