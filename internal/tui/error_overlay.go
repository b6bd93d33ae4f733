package tui

// errorOverlayModel shows one failure. retry is set for failed sync rounds,
// which can be repeated from the overlay.
type errorOverlayModel struct {
	message string
	retry   bool
}

func (m errorOverlayModel) View() string {
	content := errorStyle.Render("Ошибка") + "\n\n" + m.message + "\n\n"
	if m.retry {
		content += "s повторить    "
	}
	return overlayBoxStyle.Render(content + "enter / esc закрыть")
}
