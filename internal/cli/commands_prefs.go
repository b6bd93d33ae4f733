package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFolderCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Choose the sync folder",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "set <ref>",
			Short:   "Use a local directory or an http(s) folder server",
			Example: "  notesync folder set /home/me/Dropbox/notes\n  notesync folder set https://notes.example.com/files",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := rt.services().Prefs.SetSyncFolder(cmd.Context(), args[0]); err != nil {
					return err
				}
				ref, err := rt.services().Prefs.SyncFolder(cmd.Context())
				if err != nil {
					return err
				}
				rt.print.successf("sync folder set to %s", ref)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the sync folder",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ref, err := rt.services().Prefs.SyncFolder(cmd.Context())
				if err != nil {
					return err
				}
				rt.print.plainf("%s", ref)
				return nil
			},
		},
	)
	return cmd
}

func newAutoSyncCmd(rt *runtime) *cobra.Command {
	return newToggleCmd("autosync", "Sync automatically after edits", func(cmd *cobra.Command, on bool) error {
		return rt.services().Prefs.SetAutoSync(cmd.Context(), on)
	}, rt)
}

func newEncryptCmd(rt *runtime) *cobra.Command {
	return newToggleCmd("encrypt", "Encrypt the synced payload with the sync password", func(cmd *cobra.Command, on bool) error {
		return rt.services().Prefs.SetSyncWithPassword(cmd.Context(), on)
	}, rt)
}

func newToggleCmd(use, short string, set func(cmd *cobra.Command, on bool) error, rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       use + " on|off",
		Short:     short,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on := args[0] == "on"
			if err := set(cmd, on); err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			rt.print.successf("%s %s", use, onOff(on))
			return nil
		},
	}
}
