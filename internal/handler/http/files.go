package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MKhiriev/notesync/internal/remote"
	"github.com/MKhiriev/notesync/internal/service"
	"github.com/MKhiriev/notesync/internal/utils"
)

// filesPrefix is where the folder tree is mounted.
const filesPrefix = "/files"

// folderPath returns the folder-relative path addressed by the request.
// URL.Path is already unescaped; the folder service rejects ".." segments.
func folderPath(r *http.Request) (string, error) {
	p, ok := strings.CutPrefix(r.URL.Path, filesPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q is outside %s", service.ErrInvalidPath, r.URL.Path, filesPrefix)
	}
	return p, nil
}

func (h *Handler) readFile(w http.ResponseWriter, r *http.Request) {
	p, err := folderPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.services.FolderService.Read(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) statFile(w http.ResponseWriter, r *http.Request) {
	p, err := folderPath(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	entry, err := h.services.FolderService.Stat(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(remote.HeaderIsDir, strconv.FormatBool(entry.IsDir))
	w.Header().Set(remote.HeaderSize, strconv.FormatInt(entry.Size, 10))
	w.Header().Set(remote.HeaderModTime, strconv.FormatInt(entry.ModTime, 10))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeFile(w http.ResponseWriter, r *http.Request) {
	p, err := folderPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxFileSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = ErrBodyTooLarge
		}
		writeError(w, r, err)
		return
	}

	if err = h.services.FolderService.Write(r.Context(), p, data); err != nil {
		writeError(w, r, err)
		return
	}

	device, _ := utils.GetDeviceFromContext(r.Context())
	h.logger.Debug().Str("path", p).Str("device", device).Int("size", len(data)).Msg("file written")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) makeDir(w http.ResponseWriter, r *http.Request) {
	p, err := folderPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = h.services.FolderService.Mkdir(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) listDir(w http.ResponseWriter, r *http.Request) {
	p, err := folderPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.services.FolderService.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err = utils.WriteJSON(w, entries, http.StatusOK); err != nil {
		h.logger.Err(err).Str("path", p).Msg("write listing")
	}
}
