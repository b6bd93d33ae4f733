package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/notesync/models"
)

type noteFormModel struct {
	title   textinput.Model
	content textarea.Model
	focus   int
	editing bool
	// base keeps id, folder and labels of the edited note.
	base models.Note
	err  string
}

func newNoteFormModel(note *models.Note) noteFormModel {
	title := textinput.New()
	title.Placeholder = "Заголовок"
	title.Width = 50
	title.Focus()

	content := textarea.New()
	content.Placeholder = "Текст заметки"
	content.SetWidth(60)
	content.SetHeight(8)

	m := noteFormModel{title: title, content: content}
	if note == nil {
		return m
	}

	m.editing = true
	m.base = *note
	m.title.SetValue(note.Title)
	m.title.CursorEnd()
	m.content.SetValue(note.Content)
	return m
}

func (m noteFormModel) toggleFocus() noteFormModel {
	if m.focus == 0 {
		m.focus = 1
		m.title.Blur()
		m.content.Focus()
	} else {
		m.focus = 0
		m.content.Blur()
		m.title.Focus()
	}
	return m
}

func (m noteFormModel) Update(msg tea.Msg) (noteFormModel, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

// toNote returns the note to save, or false when there is nothing to save.
func (m noteFormModel) toNote() (models.Note, bool) {
	note := m.base
	note.Title = strings.TrimSpace(m.title.Value())
	note.Content = m.content.Value()
	if note.Title == "" && strings.TrimSpace(note.Content) == "" {
		return models.Note{}, false
	}
	return note, true
}

func (m noteFormModel) View() string {
	title := "НОВАЯ ЗАМЕТКА"
	if m.editing {
		title = "РЕДАКТИРОВАНИЕ: " + fitText(m.base.Title, 30)
	}

	out := "Заголовок : [ " + m.title.View() + " ]\n\n"
	out += m.content.View()
	if m.err != "" {
		out += "\n\n" + errorStyle.Render("Ошибка: "+m.err)
	}

	return renderPage(title, out, "tab: след. поле │ ctrl+s: сохранить │ esc: отмена")
}
