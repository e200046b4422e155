package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"icon_studio/generator"
	"icon_studio/storage"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and navigate stored session histories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored sessions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.requireStore()
				if err != nil {
					return err
				}
				defer store.Close()
				ids, err := store.ListSessionIDs()
				if err != nil {
					return err
				}
				return a.print(ids, func(w io.Writer) {
					for _, id := range ids {
						fmt.Fprintln(w, id)
					}
				})
			},
		},
		newSessionNavCmd(a, "show", "Show a session's history", nil),
		newSessionNavCmd(a, "undo", "Select the previous entry", (*generator.Session).Undo),
		newSessionNavCmd(a, "redo", "Select the next entry", (*generator.Session).Redo),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a stored session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.requireStore()
				if err != nil {
					return err
				}
				defer store.Close()
				return store.DeleteSession(args[0])
			},
		},
	)
	return cmd
}

// newSessionNavCmd loads a session, applies move (if any), saves and prints
// the resulting history.
func newSessionNavCmd(a *app, name, short string, move func(*generator.Session) generator.Snapshot) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.requireStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := restoreStored(store, args[0])
			if err != nil {
				return err
			}
			snap := sess.Snapshot()
			if move != nil {
				snap = move(sess)
				if err := store.SaveSession(sess.ID, sess.CreatedAt, sess.State()); err != nil {
					return err
				}
			}
			return a.print(snap, func(w io.Writer) { printSnapshot(w, snap) })
		},
	}
}

func restoreStored(store *storage.Store, id string) (*generator.Session, error) {
	stored, err := store.LoadSession(id)
	if err != nil {
		return nil, err
	}
	return generator.RestoreSession(stored.ID, stored.CreatedAt, nil, stored.Records, stored.Cursor)
}

func printSnapshot(w io.Writer, snap generator.Snapshot) {
	fmt.Fprintf(w, "session %s (%d entries)\n", snap.SessionID, len(snap.History))
	for i, rec := range snap.History {
		marker := " "
		if i == snap.Cursor {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %2d  %s  %s\n", marker, i, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Label)
	}
}
