package tui

import (
	"fmt"

	"github.com/MKhiriev/notesync/models"
)

// confirmModel asks before a note is deleted. The deletion becomes a
// tombstone and reaches every device on the next sync.
type confirmModel struct {
	note models.Note
}

func (m confirmModel) View() string {
	content := fmt.Sprintf("Удалить %q?\n", valueOrDash(m.note.Title))
	if n := len(m.note.Labels); n > 0 {
		content += helpStyle.Render(fmt.Sprintf("меток: %d", n)) + "\n"
	}
	content += helpStyle.Render("Удаление попадёт на все устройства после синхронизации") + "\n\n"
	content += "y да    n нет"
	return overlayBoxStyle.Render(content)
}
