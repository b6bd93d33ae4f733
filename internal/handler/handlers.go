package handler

import (
	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/handler/http"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/service"
)

// Handlers bundles the transport handlers of the folder server.
type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(services, cfg.MaxFileSize, logger)}, nil
}
