package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSyncCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Run one sync round now",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			engine := rt.services().SyncEngine

			if _, err := rt.services().Prefs.SyncFolder(ctx); err != nil {
				return err
			}
			if err := engine.Sync(ctx); err != nil {
				return err
			}

			st := engine.Status()
			rt.print.successf("synced %s at version %d", st.Folder, st.LocalVersion)
			return nil
		},
	}
}

func newStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sync folder and engine state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc := rt.services()

			folder := "-"
			if ref, err := svc.Prefs.SyncFolder(ctx); err == nil {
				folder = ref.String()
			}

			st := svc.SyncEngine.Status()
			rt.print.row("folder", folder)
			rt.print.row("state", st.State)
			if st.Message != "" {
				rt.print.row("message", st.Message)
			}
			rt.print.row("local version", st.LocalVersion)
			rt.print.row("remote version", st.RemoteVersion)
			rt.print.row("pending changes", len(svc.SyncEngine.PendingChanges()))
			rt.print.row("auto sync", onOff(svc.Prefs.AutoSync(ctx)))
			rt.print.row("encryption", onOff(svc.Prefs.SyncWithPassword(ctx)))
			return nil
		},
	}
}

func newWatchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Sync in the background on schedule and on folder changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if _, err := rt.services().Prefs.SyncFolder(ctx); err != nil {
				return err
			}
			if err := rt.services().Prefs.SetAutoSync(ctx, true); err != nil {
				return err
			}

			rt.print.infof("watching, press ctrl+c to stop")
			// первый раунд сразу, дальше по расписанию и событиям папки
			if err := rt.services().SyncEngine.Sync(ctx); err != nil {
				rt.print.errorf("initial sync: %v", err)
			}
			return rt.app.RunBackground(ctx)
		},
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
