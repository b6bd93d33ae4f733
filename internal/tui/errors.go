// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/notesync/internal/crypto"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/service"
)

// needsPassword reports whether err is solved by asking the user for the
// sync password.
func needsPassword(err error) bool {
	return errors.Is(err, service.ErrPasswordRequired) || errors.Is(err, crypto.ErrDecryptionFailed)
}

func humanizeSyncError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrNoFolder):
		return "Папка синхронизации не выбрана"
	case errors.Is(err, service.ErrFirstSyncRequired):
		return "В папке уже есть данные. Сначала выполните синхронизацию (s)"
	case errors.Is(err, service.ErrSyncInProgress):
		return "Синхронизация уже выполняется"
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return "Неверный пароль синхронизации"
	case errors.Is(err, remote.ErrUnauthorized):
		return "Сервер отклонил токен доступа"
	case errors.Is(err, service.ErrRemotePayload):
		return "Данные в папке повреждены, локальные заметки не изменены"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "Отсутствует сеть или Сервер недоступен"
	}

	return err.Error()
}
