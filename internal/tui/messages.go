package tui

import (
	"github.com/MKhiriev/notesync/models"
)

type notesLoadedMsg struct {
	notes   []models.Note
	folders map[string]string
	err     error
}

type syncDoneMsg struct {
	err error
}

type noteSavedMsg struct {
	err error
}

type noteDeletedMsg struct {
	err error
}

type prefSavedMsg struct {
	status string
	err    error
}

// statusTickMsg polls the engine; rounds also run in the background.
type statusTickMsg struct{}

type clearStatusMsg struct{}
