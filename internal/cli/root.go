// Package cli implements the notesync command line.
//
// Running the binary without a subcommand opens the notes screen; the
// subcommands script the same operations (sync, notes, preferences) for
// shells and cron.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/notesync/internal/client"
	"github.com/MKhiriev/notesync/internal/config"
	"github.com/MKhiriev/notesync/internal/logger"
	"github.com/MKhiriev/notesync/internal/service"
)

// annotationTUI marks commands that own the terminal; they must not get a
// terminal password prompt.
const annotationTUI = "tui"

type runtime struct {
	flags *config.Flags
	in    *os.File
	print printer

	app *client.App
	log *logger.Logger
}

func newRootCmd(in *os.File, out io.Writer) (*cobra.Command, *runtime) {
	rt := &runtime{in: in, print: printer{out: out}}

	root := &cobra.Command{
		Use:           "notesync",
		Short:         "Offline-first notes synced through a shared folder",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Annotations:       map[string]string{annotationTUI: "true"},
		PersistentPreRunE: rt.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Run(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	rt.flags = config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newSyncCmd(rt),
		newStatusCmd(rt),
		newWatchCmd(rt),
		newFolderCmd(rt),
		newNoteCmd(rt),
		newDirCmd(rt),
		newLabelCmd(rt),
		newSettingCmd(rt),
		newAutoSyncCmd(rt),
		newEncryptCmd(rt),
		newVersionCmd(rt),
	)

	return root, rt
}

// Execute runs the command line and closes the app afterwards, also when the
// command failed.
func Execute(ctx context.Context, args []string, in *os.File, out io.Writer) error {
	root, rt := newRootCmd(in, out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if rt.app != nil {
		if closeErr := rt.app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if err != nil {
		printer{out: out}.errorf("%v", err)
	}
	return err
}

func (rt *runtime) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.GetClientConfig(rt.flags.Config())
	if err != nil {
		return err
	}

	rt.log = logger.NewClientLogger("notesync-client", cfg.Log.Path, cfg.Log.Level)

	var password service.PasswordProvider
	if cmd.Annotations[annotationTUI] != "true" {
		password = terminalPassword(rt.in, cmd.OutOrStdout())
	}

	app, err := client.NewApp(cmd.Context(), cfg, password, rt.log)
	if err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	rt.app = app
	return nil
}

func (rt *runtime) services() *service.ClientServices {
	return rt.app.Services()
}
