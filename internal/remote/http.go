// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/utils"
	"github.com/MKhiriev/notesync/models"
)

const (
	// HeaderIsDir tells whether a HEAD target is a directory.
	HeaderIsDir = "X-Notesync-Is-Dir"
	// HeaderSize carries the file size of a HEAD target.
	HeaderSize = "X-Notesync-Size"
	// HeaderModTime carries the modification time in epoch milliseconds.
	HeaderModTime = "X-Notesync-Mod-Time"

	MethodMkcol    = "MKCOL"
	MethodPropfind = "PROPFIND"

	defaultHTTPTimeout = 30 * time.Second
	tokenLifetime      = 10 * time.Minute
)

// HTTPFolder is a sync folder served by the notesync folder server.
type HTTPFolder struct {
	client *utils.HTTPClient
	ref    Ref
	opts   Options
	logger *logger.Logger

	tokenMu sync.Mutex
	token   models.Token
}

// NewHTTPFolder returns a folder rooted at ref.Location.
func NewHTTPFolder(ref Ref, opts Options) (*HTTPFolder, error) {
	if ref.Kind != RefHTTP {
		return nil, fmt.Errorf("%w: %s is not an http reference", ErrInvalidRef, ref)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHTTPTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	f := &HTTPFolder{
		client: utils.NewHTTPClient(ref.Location, opts.Timeout),
		ref:    ref,
		opts:   opts,
		logger: opts.Logger,
	}
	f.client.OnBeforeRequest(f.authorize)
	return f, nil
}

func (f *HTTPFolder) Ref() Ref {
	return f.ref
}

func (f *HTTPFolder) MkdirAll(ctx context.Context, p string) error {
	resp, err := f.client.R().SetContext(ctx).Execute(MethodMkcol, escapePath(p))
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	return checkStatus(resp, p)
}

func (f *HTTPFolder) Stat(ctx context.Context, p string) (models.FileEntry, error) {
	resp, err := f.client.R().SetContext(ctx).Head(escapePath(p))
	if err != nil {
		return models.FileEntry{}, fmt.Errorf("stat %s: %w", p, err)
	}
	if err := checkStatus(resp, p); err != nil {
		return models.FileEntry{}, err
	}

	entry := models.FileEntry{
		Name:  path.Base(path.Clean("/" + p)),
		IsDir: resp.Header().Get(HeaderIsDir) == "true",
	}
	if !entry.IsDir {
		entry.Size, _ = strconv.ParseInt(resp.Header().Get(HeaderSize), 10, 64)
	}
	entry.ModTime, _ = strconv.ParseInt(resp.Header().Get(HeaderModTime), 10, 64)
	return entry, nil
}

func (f *HTTPFolder) ReadFile(ctx context.Context, p string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(escapePath(p))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if err := checkStatus(resp, p); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (f *HTTPFolder) WriteFile(ctx context.Context, p string, data []byte) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(escapePath(p))
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return checkStatus(resp, p)
}

func (f *HTTPFolder) ReadDir(ctx context.Context, p string) ([]models.FileEntry, error) {
	var entries []models.FileEntry
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Execute(MethodPropfind, escapePath(p))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	if err := checkStatus(resp, p); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("decode listing of %s: %w", p, err)
	}
	return entries, nil
}

// authorize attaches a bearer token, minting a new one shortly before the
// cached one expires.
func (f *HTTPFolder) authorize(_ *resty.Client, r *resty.Request) error {
	if f.opts.TokenSignKey == "" {
		return nil
	}

	f.tokenMu.Lock()
	defer f.tokenMu.Unlock()

	if f.token.SignedString == "" || f.token.ExpiresAt == nil ||
		time.Until(f.token.ExpiresAt.Time) < tokenLifetime/4 {
		token, err := utils.GenerateJWTToken(f.opts.TokenIssuer, f.opts.Device, tokenLifetime, f.opts.TokenSignKey)
		if err != nil {
			return err
		}
		f.token = token
		f.logger.Debug().Str("func", "HTTPFolder.authorize").Str("device", token.Device).Msg("minted folder token")
	}

	r.SetAuthToken(f.token.SignedString)
	return nil
}

func checkStatus(resp *resty.Response, p string) error {
	switch code := resp.StatusCode(); {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotExist, p)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, strings.TrimSpace(resp.String()))
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrIsDirectory, p)
	default:
		return fmt.Errorf("%s %s: unexpected status %s", resp.Request.Method, p, resp.Status())
	}
}

// escapePath turns a folder path into a request path relative to the base
// URL, escaping each segment.
func escapePath(p string) string {
	clean := strings.Trim(path.Clean("/"+p), "/")
	if clean == "" {
		return "/"
	}
	segments := strings.Split(clean, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(segments, "/")
}
