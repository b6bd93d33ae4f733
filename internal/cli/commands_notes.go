package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/notesync/models"
)

func newNoteCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}

	var (
		title, content, folderID string
		labels                   []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a note, or update it when --id is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			note := models.Note{ID: id, Title: title, Content: content, Labels: labels}
			if folderID != "" {
				note.FolderID = &folderID
			}

			saved, err := rt.services().NoteService.PutNote(cmd.Context(), note)
			if err != nil {
				return err
			}
			rt.print.successf("saved note %s", saved.ID)
			return nil
		},
	}
	add.Flags().String("id", "", "id of the note to update")
	add.Flags().StringVarP(&title, "title", "t", "", "note title")
	add.Flags().StringVarP(&content, "content", "m", "", "note text")
	add.Flags().StringVar(&folderID, "folder-id", "", "folder the note belongs to")
	add.Flags().StringSliceVarP(&labels, "label", "l", nil, "note label (repeatable)")

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			notes, err := rt.services().NoteService.ListNotes(cmd.Context())
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				rt.print.infof("no notes")
				return nil
			}
			for _, n := range notes {
				rt.print.plainf("%s  %s  %s", n.ID, time.UnixMilli(n.UpdatedAt).Format(time.DateTime), n.Title)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.services().NoteService.DeleteNote(cmd.Context(), args[0]); err != nil {
				return err
			}
			rt.print.successf("deleted note %s", args[0])
			return nil
		},
	}

	var unlock bool
	lock := &cobra.Command{
		Use:   "lock <id>",
		Short: "Lock a note against edits (--off to unlock)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.services().NoteService.SetNoteLocked(cmd.Context(), args[0], !unlock); err != nil {
				return err
			}
			rt.print.successf("note %s locked: %s", args[0], onOff(!unlock))
			return nil
		},
	}
	lock.Flags().BoolVar(&unlock, "off", false, "unlock instead")

	cmd.AddCommand(add, ls, rm, lock)
	return cmd
}

func newDirCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Manage note folders",
	}

	var parent string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a note folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := models.Folder{Name: args[0]}
			if parent != "" {
				folder.ParentID = &parent
			}
			saved, err := rt.services().NoteService.PutFolder(cmd.Context(), folder)
			if err != nil {
				return err
			}
			rt.print.successf("saved folder %s", saved.ID)
			return nil
		},
	}
	add.Flags().StringVar(&parent, "parent", "", "parent folder id")

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List note folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			folders, err := rt.services().NoteService.ListFolders(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range folders {
				parent := "-"
				if f.ParentID != nil {
					parent = *f.ParentID
				}
				rt.print.plainf("%s  %s  (parent %s)", f.ID, f.Name, parent)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note folder; its notes and subfolders move to the top level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.services().NoteService.DeleteFolder(cmd.Context(), args[0]); err != nil {
				return err
			}
			rt.print.successf("deleted folder %s", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, ls, rm)
	return cmd
}

func newLabelCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage labels",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <label>",
			Short: "Add a label",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := rt.services().NoteService.AddLabel(cmd.Context(), args[0]); err != nil {
					return err
				}
				rt.print.successf("added label %q", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "ls",
			Short: "List labels",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				labels, err := rt.services().NoteService.Labels(cmd.Context())
				if err != nil {
					return err
				}
				for _, l := range labels {
					rt.print.plainf("%s", l)
				}
				return nil
			},
		},
	)
	return cmd
}

func newSettingCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "setting <key> <value>",
		Short: "Set a synced setting; JSON values are stored as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any = args[1]
			if raw := []byte(args[1]); json.Valid(raw) {
				value = json.RawMessage(raw)
			}
			if err := rt.services().NoteService.SetSetting(cmd.Context(), args[0], value); err != nil {
				return err
			}
			rt.print.successf("setting %s saved", args[0])
			return nil
		},
	}
}
