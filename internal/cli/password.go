package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/MKhiriev/notesync/internal/service"
)

// terminalPassword asks for the sync password on the controlling terminal.
// Without a terminal it reports ErrPasswordRequired so scripts fail fast;
// NOTESYNC_SYNC_PASSWORD or APP_SYNC_PASSWORD supply it non-interactively.
func terminalPassword(in *os.File, out io.Writer) service.PasswordProvider {
	return func(ctx context.Context) (string, error) {
		if v := os.Getenv("NOTESYNC_SYNC_PASSWORD"); v != "" {
			return v, nil
		}

		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			return "", service.ErrPasswordRequired
		}

		fmt.Fprint(out, indent+"Sync password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
}
