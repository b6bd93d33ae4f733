package validators

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/MKhiriev/notesync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldVersion targets SyncMetadata.Version.
	FieldVersion = "version"

	// FieldTimestamps targets the epoch-ms timestamps of SyncMetadata.
	FieldTimestamps = "timestamps"

	// FieldInitialized targets SyncMetadata.IsInitialized.
	FieldInitialized = "initialized"

	// FieldData targets DataFile.Data.
	FieldData = "data"
)

// SyncFileValidator implements Validator for the two files of a sync folder:
// models.SyncMetadata (metadata.json) and models.DataFile (data.json).
type SyncFileValidator struct {
}

func NewSyncFileValidator() Validator {
	return &SyncFileValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer
// forms are accepted. When fields is empty every field is checked.
func (v *SyncFileValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SyncMetadata:
		return v.validateMetadata(ctx, value, fields...)
	case *models.SyncMetadata:
		return v.validateMetadata(ctx, *value, fields...)

	case models.DataFile:
		return v.validateDataFile(ctx, value, fields...)
	case *models.DataFile:
		return v.validateDataFile(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateMetadata checks a pushed metadata record. A pushed record always
// carries a positive version and isInitialized=true.
func (v *SyncFileValidator) validateMetadata(_ context.Context, meta models.SyncMetadata, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldVersion, FieldTimestamps, FieldInitialized}
	}

	for _, f := range fields {
		switch f {
		case FieldVersion:
			if meta.Version <= 0 {
				return ErrInvalidVersion
			}
		case FieldTimestamps:
			if meta.LastModified < 0 || meta.LastSynced < 0 || meta.LastPush < 0 || meta.LastPull < 0 {
				return ErrInvalidTimestamp
			}
		case FieldInitialized:
			if !meta.IsInitialized {
				return ErrNotInitialized
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncFileValidator) validateDataFile(_ context.Context, file models.DataFile, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldData}
	}

	for _, f := range fields {
		switch f {
		case FieldData:
			if err := validateData(file.Data); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateData accepts a JSON object (plain payload) or a non-empty JSON
// string (encrypted payload).
func validateData(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyData
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return ErrInvalidDataType
		}
		return nil
	case '"':
		var blob string
		if err := json.Unmarshal(trimmed, &blob); err != nil {
			return ErrInvalidDataType
		}
		if blob == "" {
			return ErrEmptyEncryptedBox
		}
		return nil
	default:
		return ErrInvalidDataType
	}
}
