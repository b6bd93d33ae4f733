package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/models"
)

// folderService exposes one remote.Folder (the server's root directory) to
// the HTTP handlers.
type folderService struct {
	folder remote.Folder
	logger *logger.Logger
}

func NewFolderService(folder remote.Folder, logger *logger.Logger) FolderService {
	return &folderService{folder: folder, logger: logger}
}

func (s *folderService) Stat(ctx context.Context, p string) (models.FileEntry, error) {
	p, err := cleanPath(p)
	if err != nil {
		return models.FileEntry{}, err
	}
	return s.folder.Stat(ctx, p)
}

func (s *folderService) Read(ctx context.Context, p string) ([]byte, error) {
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	return s.folder.ReadFile(ctx, p)
}

func (s *folderService) Write(ctx context.Context, p string, data []byte) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("%w: cannot write the folder root", ErrInvalidPath)
	}

	if err = s.folder.WriteFile(ctx, p, data); err != nil {
		logger.FromContext(ctx).Err(err).Str("path", p).Msg("write failed")
		return err
	}
	return nil
}

func (s *folderService) Mkdir(ctx context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	return s.folder.MkdirAll(ctx, p)
}

func (s *folderService) List(ctx context.Context, p string) ([]models.FileEntry, error) {
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	return s.folder.ReadDir(ctx, p)
}

// cleanPath turns a request path into a folder-relative slash path. Paths
// that climb above the root are rejected rather than clamped.
func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}

	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/"), nil
}
