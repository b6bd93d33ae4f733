package service

import (
	"github.com/MKhiriev/notesync/internal/clock"
	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/crypto"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/merge"
	"github.com/MKhiriev/notesync/internal/store"
	"github.com/MKhiriev/notesync/internal/utils"
)

// ClientServices are the client's services over one local store.
type ClientServices struct {
	Prefs       *Prefs
	SyncEngine  SyncEngine
	NoteService NoteService
	SyncJob     SyncJob
}

// NewClientServices wires the engine, the note service and the periodic
// job. password is asked when an encrypted folder needs a password that the
// configuration does not supply; it may be nil.
func NewClientServices(kv store.KVStore, cfg config.ClientSync, password PasswordProvider, log *logger.Logger) *ClientServices {
	clk := clock.New()
	ids := utils.NewUUIDGenerator()
	prefs := NewPrefs(kv, cfg.AutoSync, cfg.Folder)

	engine := NewSyncEngine(EngineDeps{
		Store:    kv,
		Prefs:    prefs,
		Cipher:   crypto.NewPayloadCipher(),
		Resolver: merge.NewResolver(merge.DefaultRegistry()),
		Password: password,
		Clock:    clk,
		IDs:      ids,
		Logger:   log,
	}, cfg)

	notes := NewNoteService(kv, engine, clk, ids, log)
	engine.SetRefresher(notes.Reload)

	return &ClientServices{
		Prefs:       prefs,
		SyncEngine:  engine,
		NoteService: notes,
		SyncJob:     NewSyncJob(engine, prefs.AutoSync, cfg.Schedule, log),
	}
}
