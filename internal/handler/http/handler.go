package http

import (
	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/service"
)

// Handler serves one folder tree over HTTP.
type Handler struct {
	services *service.Services

	// maxFileSize caps a single PUT body.
	maxFileSize int64

	logger *logger.Logger
}

// NewHandler builds the folder handler. A non-positive maxFileSize falls
// back to config.DefaultMaxFileSize.
func NewHandler(services *service.Services, maxFileSize int64, logger *logger.Logger) *Handler {
	if maxFileSize <= 0 {
		maxFileSize = config.DefaultMaxFileSize
	}

	logger.Info().Int64("max_file_size", maxFileSize).Msg("folder handler created")
	return &Handler{
		services:    services,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}
