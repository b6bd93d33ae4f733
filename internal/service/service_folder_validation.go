package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/validators"
	"github.com/MKhiriev/notesync/models"
)

// FolderValidationService rejects writes that would leave metadata.json or
// data.json unreadable for other clients. Other paths pass through.
type FolderValidationService struct {
	inner     FolderService
	validator validators.Validator
}

func NewFolderValidationService() FolderServiceWrapper {
	return &FolderValidationService{
		validator: validators.NewSyncFileValidator(),
	}
}

func (v *FolderValidationService) Stat(ctx context.Context, p string) (models.FileEntry, error) {
	return v.inner.Stat(ctx, p)
}

func (v *FolderValidationService) Read(ctx context.Context, p string) ([]byte, error) {
	return v.inner.Read(ctx, p)
}

func (v *FolderValidationService) Write(ctx context.Context, p string, data []byte) error {
	// only the sync files at the folder root are structured
	clean, err := cleanPath(p)
	if err != nil {
		return err
	}

	switch clean {
	case remote.MetadataFile:
		var meta models.SyncMetadata
		if err = json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDataProvided, clean, err)
		}
		if err = v.validator.Validate(ctx, meta); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDataProvided, clean, err)
		}
	case remote.DataFile:
		var file models.DataFile
		if err = json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDataProvided, clean, err)
		}
		if err = v.validator.Validate(ctx, file); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDataProvided, clean, err)
		}
	}

	return v.inner.Write(ctx, p, data)
}

func (v *FolderValidationService) Mkdir(ctx context.Context, p string) error {
	return v.inner.Mkdir(ctx, p)
}

func (v *FolderValidationService) List(ctx context.Context, p string) ([]models.FileEntry, error) {
	return v.inner.List(ctx, p)
}

func (v *FolderValidationService) Wrap(inner FolderService) FolderService {
	v.inner = inner
	return v
}
