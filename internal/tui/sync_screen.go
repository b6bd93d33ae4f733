package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/MKhiriev/notesync/models"
)

type syncModel struct {
	spinner spinner.Model
	running bool
}

func newSyncModel() syncModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return syncModel{spinner: s}
}

// View renders the one-line sync indicator under the note list.
func (m syncModel) View(st models.SyncStatus, autoSync bool) string {
	if m.running || st.State == models.SyncStateSyncing {
		return m.spinner.View() + " Синхронизация..."
	}

	auto := "выкл"
	if autoSync {
		auto = "вкл"
	}
	lock := ""
	if st.Encrypted {
		lock = " │ шифрование"
	}

	line := fmt.Sprintf("Версия %d/%d │ изменений: %d │ автосинхр.: %s%s",
		st.LocalVersion, st.RemoteVersion, st.PendingChanges, auto, lock)

	switch st.State {
	case models.SyncStateError:
		return errorStyle.Render("✗ "+st.Message) + "\n" + line
	case models.SyncStateSuccess:
		return okStyle.Render("✓ "+formatMillis(st.LastSynced)) + "\n" + line
	default:
		return "Синхронизаций не было\n" + line
	}
}
