package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/notesync/internal/remote"
)

func init() {
	chi.RegisterMethod(remote.MethodMkcol)
	chi.RegisterMethod(remote.MethodPropfind)
}

// folderMethods are the methods the /files tree answers.
var folderMethods = []string{"GET", "HEAD", "PUT", remote.MethodMkcol, remote.MethodPropfind}

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging, withGZip)

	router.Get("/api/version/", h.getServerVersion)

	router.Route(filesPrefix, func(r chi.Router) {
		r.Use(h.auth)
		for _, pattern := range []string{"/", "/*"} {
			r.Get(pattern, h.readFile)
			r.Head(pattern, h.statFile)
			r.Put(pattern, h.writeFile)
			r.MethodFunc(remote.MethodMkcol, pattern, h.makeDir)
			r.MethodFunc(remote.MethodPropfind, pattern, h.listDir)
		}
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
