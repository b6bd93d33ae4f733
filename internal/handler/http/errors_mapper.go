package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/service"
	"github.com/MKhiriev/notesync/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidPath:             http.StatusBadRequest,
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,

	remote.ErrNotExist:     http.StatusNotFound,
	remote.ErrOutsideRoot:  http.StatusBadRequest,
	remote.ErrIsDirectory:  http.StatusConflict,
	remote.ErrUnauthorized: http.StatusUnauthorized,
	remote.ErrLocked:       http.StatusLocked,

	ErrBodyTooLarge: http.StatusRequestEntityTooLarge,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status err maps to. Server-side failures are
// logged at error level, client mistakes at debug.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg := http.StatusText(status)
		if traceID, ok := utils.GetTraceIDFromContext(r.Context()); ok {
			msg += " (trace " + traceID + ")"
		}
		http.Error(w, msg, status)
		return
	}

	log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	http.Error(w, err.Error(), status)
}
