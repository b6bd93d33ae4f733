package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
)

type passwordModel struct {
	input textinput.Model
	retry bool
}

func newPasswordModel(retry bool) passwordModel {
	in := textinput.New()
	in.Placeholder = "Пароль синхронизации"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '*'
	in.Width = 40
	in.Focus()
	return passwordModel{input: in, retry: retry}
}

func (m passwordModel) View() string {
	content := "Папка синхронизации зашифрована.\n\n"
	if m.retry {
		content = errorStyle.Render("Неверный пароль.") + "\n\n"
	}
	content += "Пароль: [" + m.input.View() + "]\n\n"
	content += "enter продолжить    esc отмена"
	return overlayBoxStyle.Render(content)
}
