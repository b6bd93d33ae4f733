// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package remote

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/MKhiriev/notesync/internal/logger"
)

// RefKind tells which backend serves a folder.
type RefKind string

const (
	RefLocal RefKind = "file"
	RefHTTP  RefKind = "http"
)

// Ref is the serialized handle of a sync folder as stored in the
// syncFolder preference: "file:///abs/dir", a bare absolute path, or
// "http(s)://host:port/prefix".
type Ref struct {
	Kind RefKind
	// Location is the absolute directory of a local folder or the base URL
	// of an HTTP folder.
	Location string
}

// ParseRef parses a folder reference.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("%w: empty", ErrInvalidRef)
	}

	if filepath.IsAbs(s) {
		return Ref{Kind: RefLocal, Location: filepath.Clean(s)}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return Ref{}, fmt.Errorf("%w: remote host in file reference %q", ErrInvalidRef, s)
		}
		if !filepath.IsAbs(u.Path) {
			return Ref{}, fmt.Errorf("%w: %q is not absolute", ErrInvalidRef, s)
		}
		return Ref{Kind: RefLocal, Location: filepath.Clean(u.Path)}, nil
	case "http", "https":
		if u.Host == "" {
			return Ref{}, fmt.Errorf("%w: %q has no host", ErrInvalidRef, s)
		}
		u.RawQuery, u.Fragment = "", ""
		u.Path = strings.TrimRight(u.Path, "/")
		return Ref{Kind: RefHTTP, Location: u.String()}, nil
	default:
		return Ref{}, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidRef, s)
	}
}

// String returns the canonical form of r, which ParseRef accepts back.
func (r Ref) String() string {
	switch r.Kind {
	case RefLocal:
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(r.Location)}).String()
	default:
		return r.Location
	}
}

// IsZero reports whether r is the empty reference.
func (r Ref) IsZero() bool {
	return r.Location == ""
}

// Options configure the folder backends.
type Options struct {
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// TokenSignKey enables bearer tokens for HTTP folders.
	TokenSignKey string
	TokenIssuer  string
	// Device is the token subject.
	Device string
	Logger *logger.Logger
}

// Open returns the backend serving ref.
func Open(ref Ref, opts Options) (Folder, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	switch ref.Kind {
	case RefLocal:
		return NewLocalFolder(ref.Location)
	case RefHTTP:
		return NewHTTPFolder(ref, opts)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRef, ref.Kind)
	}
}
