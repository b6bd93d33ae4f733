// Package http serves a directory as a notesync sync folder.
//
// Files live under /files and are addressed by their folder-relative path:
// GET reads, HEAD stats, PUT writes, MKCOL creates a directory and PROPFIND
// lists one. Writes to metadata.json and data.json are validated before they
// reach the disk. Tracing, access logging, bearer-token authentication and
// gzip are handled here before requests reach the service layer.
package http
