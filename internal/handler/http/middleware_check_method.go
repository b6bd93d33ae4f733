// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// probeMethods are tried against the router to build the Allow header.
var probeMethods = append([]string{http.MethodPost, http.MethodDelete, http.MethodPatch}, folderMethods...)

// CheckHTTPMethod returns the router's MethodNotAllowed handler. Chi calls it
// when the path matched a route but not for the request method; the handler
// answers 405 with an Allow header naming the methods that do match, so a
// client that sent an unknown verb learns what the folder server speaks.
// Paths that match nothing at all get 404.
//
// Usage:
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range probeMethods {
			if router.Match(chi.NewRouteContext(), method, r.URL.Path) {
				allowed = append(allowed, method)
			}
		}

		if len(allowed) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Allow", strings.Join(allowed, ", "))
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
