package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akss-tools/namefix/backup_manager"
	"github.com/akss-tools/namefix/constants/lipgloss"
)

// rollbackCmd represents the rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore the files saved by the last apply",
	Long: `The 'rollback' command copies every file of the backup directory back over the file of the
same name in the source directory, or in the include directory when the source directory has
none. Files that match neither are reported and left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleRollbackCommand(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

func handleRollbackCommand(cmd *cobra.Command) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}

	spinner, _ := newSpinner().Start("Restoring backup...")
	warnings, err := rootDependencies.Session.Rollback()
	stopSpinner(spinner)

	for _, w := range warnings {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: %v", w)))
	}

	if errors.Is(err, backup_manager.ErrNoBackup) {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("No backup found in %s.",
			displayPath(rootDependencies.Cwd, rootDependencies.Backups.Dir()))))
		return nil
	}
	if err != nil {
		return err
	}

	restored := len(rootDependencies.Session.Snapshot().Files) - len(warnings)
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ %d files restored from %s.", restored,
		displayPath(rootDependencies.Cwd, rootDependencies.Backups.Dir()))))
	return nil
}
