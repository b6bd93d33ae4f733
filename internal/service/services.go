package service

import (
	"fmt"

	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/remote"
)

// Services are the folder server's services.
type Services struct {
	FolderService  FolderService
	AuthService    AuthService
	AppInfoService AppInfoService
}

func NewServices(cfg config.ServerConfig, logger *logger.Logger) (*Services, error) {
	root, err := remote.NewLocalFolder(cfg.Server.RootDir)
	if err != nil {
		return nil, fmt.Errorf("open served folder: %w", err)
	}

	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	folder := NewFolderValidationService().Wrap(NewFolderService(root, logger))

	return &Services{
		FolderService:  folder,
		AuthService:    NewAuthService(cfg.Server, logger),
		AppInfoService: appInfo,
	}, nil
}
