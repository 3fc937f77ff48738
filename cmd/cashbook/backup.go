package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashbook/internal/cli"
	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/storage"
)

func backupCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `Create, list, restore and delete snapshots of the cashbook database.

Backups are stored in a "backups" directory next to the database. An
automatic backup is taken before every OFX import; only the five newest
automatic backups are kept.`,
	}

	cmd.AddCommand(createBackupCmd(opts))
	cmd.AddCommand(listBackupsCmd(opts))
	cmd.AddCommand(restoreBackupCmd(opts))
	cmd.AddCommand(deleteBackupCmd(opts))

	return cmd
}

// openBackups opens storage and its backup manager. The caller closes the
// returned storage.
func (o *rootOptions) openBackups(cmd *cobra.Command) (*storage.BackupManager, *storage.SQLiteStorage, error) {
	store, err := initStorage(cmd.Context(), o.settings.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	bm, err := store.NewBackupManager()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to open backups: %w", err)
	}
	return bm, store, nil
}

func createBackupCmd(opts *rootOptions) *cobra.Command {
	var id, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bm, store, err := opts.openBackups(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			info, err := bm.Create(cmd.Context(), id, description)
			if err != nil {
				return backupError(err, id)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created backup %s", info.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "backup ID (default: generated from the current time)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what this backup is for")
	return cmd
}

func listBackupsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bm, store, err := opts.openBackups(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			backups, err := bm.List(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderBackups(backups))
			return nil
		},
	}
}

func restoreBackupCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bm, store, err := opts.openBackups(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !yes {
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				ok, err := prompter.Confirm(ctx, fmt.Sprintf("Replace the current database with backup %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Restore canceled"))
					return nil
				}
			}

			if err := bm.Restore(ctx, args[0]); err != nil {
				return backupError(err, args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored backup "+args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func deleteBackupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <backup-id>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bm, store, err := opts.openBackups(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := bm.Delete(cmd.Context(), args[0]); err != nil {
				return backupError(err, args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted backup "+args[0]))
			return nil
		},
	}
}

func backupError(err error, id string) error {
	switch {
	case errors.Is(err, storage.ErrBackupNotFound):
		return common.NewUserError(fmt.Sprintf("Backup %q does not exist", id), err)
	case errors.Is(err, storage.ErrBackupExists):
		return common.NewUserError(fmt.Sprintf("Backup %q already exists", id), err)
	case errors.Is(err, storage.ErrInvalidBackupID):
		return common.NewUserError("Backup IDs cannot contain path separators or quotes", err)
	case errors.Is(err, storage.ErrBackupCorrupted):
		return common.NewUserError(fmt.Sprintf("Backup %q failed its integrity check and was not restored", id), err)
	default:
		return err
	}
}
