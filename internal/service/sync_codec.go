package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/notesync/models"
)

// decodeDataFile parses data.json. The "data" member is either the payload
// object or a string holding the encrypted payload.
func (e *syncEngine) decodeDataFile(ctx context.Context, raw []byte) (models.Payload, bool, error) {
	var file models.DataFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, false, fmt.Errorf("%w: data file: %v", ErrRemotePayload, err)
	}

	data := bytes.TrimSpace(file.Data)
	if len(data) == 0 {
		return nil, false, fmt.Errorf("%w: data file has no data", ErrRemotePayload)
	}

	switch data[0] {
	case '{':
		payload, err := decodePayload(data)
		return payload, false, err

	case '"':
		var blob string
		if err := json.Unmarshal(data, &blob); err != nil {
			return nil, true, fmt.Errorf("%w: encrypted data: %v", ErrRemotePayload, err)
		}

		password, err := e.obtainPassword(ctx)
		if err != nil {
			return nil, true, err
		}

		plaintext, err := e.cipher.Decrypt(blob, password)
		if err != nil {
			return nil, true, err
		}

		payload, err := decodePayload(plaintext)
		return payload, true, err

	default:
		return nil, false, fmt.Errorf("%w: data is neither an object nor an encrypted string", ErrRemotePayload)
	}
}

// encodeDataFile serializes payload for data.json. The payload is encrypted
// when the user asked for it or when the folder already holds encrypted data.
func (e *syncEngine) encodeDataFile(ctx context.Context, payload models.Payload) ([]byte, bool, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("encode payload: %w", err)
	}

	e.mu.RLock()
	encrypt := e.remoteEncrypted
	e.mu.RUnlock()
	if !encrypt {
		encrypt = e.prefs.SyncWithPassword(ctx)
	}

	if !encrypt {
		out, err := json.Marshal(models.DataFile{Data: plaintext})
		return out, false, err
	}

	password, err := e.obtainPassword(ctx)
	if err != nil {
		return nil, true, err
	}

	blob, err := e.cipher.Encrypt(plaintext, password)
	if err != nil {
		return nil, true, fmt.Errorf("encrypt payload: %w", err)
	}

	quoted, err := json.Marshal(blob)
	if err != nil {
		return nil, true, err
	}
	out, err := json.Marshal(models.DataFile{Data: quoted})
	return out, true, err
}

// obtainPassword returns the in-memory password or asks the provider once
// and keeps the answer for the rest of the session.
func (e *syncEngine) obtainPassword(ctx context.Context) (string, error) {
	e.mu.RLock()
	password, ask := e.password, e.askPassword
	e.mu.RUnlock()

	if password != "" {
		return password, nil
	}
	if ask == nil {
		return "", ErrPasswordRequired
	}

	password, err := ask(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPasswordRequired, err)
	}
	if password == "" {
		return "", ErrPasswordRequired
	}

	e.SetPassword(password)
	return password, nil
}

// forgetPassword drops a password the remote payload rejected, so the next
// round asks again.
func (e *syncEngine) forgetPassword() {
	e.SetPassword("")
}

func decodePayload(raw []byte) (models.Payload, error) {
	var payload models.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrRemotePayload, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is null", ErrRemotePayload)
	}
	return payload, nil
}
