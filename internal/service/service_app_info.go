package service

import (
	"context"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
)

// appInfoService reports the build the folder server runs. Clients only use
// it as a reachability probe before pointing a sync folder at the server.
type appInfoService struct {
	version string
	logger  *logger.Logger
}

func NewAppInfoService(cfg config.App, log *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}
	return &appInfoService{version: cfg.Version, logger: log}, nil
}

func (s *appInfoService) GetAppVersion(context.Context) string {
	return s.version
}
