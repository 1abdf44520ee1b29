package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akss-tools/namefix/backup_manager"
	"github.com/akss-tools/namefix/constants/lipgloss"
	"github.com/akss-tools/namefix/session"
	"github.com/akss-tools/namefix/utils"
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Back the project up and rewrite every planned rename",
	Long: `The 'apply' command scans the project, asks for confirmation, copies every project file to
the backup directory and then rewrites all occurrences of every planned rename. If the backup
cannot be written no file is changed. Run 'namefix rollback' to restore the backup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		noTidy, _ := cmd.Flags().GetBool("no-tidy")
		return handleApplyCommand(cmd, yes, noTidy)
	},
}

func init() {
	applyCmd.Flags().BoolP("yes", "y", false, "Apply without asking for confirmation.")
	applyCmd.Flags().Bool("no-tidy", false, "Skip the clang-tidy pass after substitution.")

	rootCmd.AddCommand(applyCmd)
}

func handleApplyCommand(cmd *cobra.Command, yes, noTidy bool) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}
	cfg := rootDependencies.Config

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	plan, ok, err := scanAndPlan(ctx, rootDependencies)
	if err != nil || !ok {
		return err
	}

	pending := effectiveRenames(plan)
	if len(pending) == 0 {
		fmt.Println(lipgloss.Green.Render("✓ Every symbol already follows its convention. Nothing to apply."))
		return nil
	}
	if err := renderPlan(rootDependencies.Cwd, pending); err != nil {
		return err
	}
	printPlanSummary(plan)

	warnUncommittedChanges(ctx, rootDependencies)

	if !yes {
		question := fmt.Sprintf("Rewrite %d files under %s?", rootDependencies.Session.Files().Len(),
			displayPath(rootDependencies.Cwd, cfg.SourceDir))
		confirmed, err := utils.Confirm(ctx, bufio.NewReader(os.Stdin), os.Stdout, question)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Apply cancelled."))
			return nil
		}
	}

	spinner, _ := newSpinner().Start("Applying renames...")
	result, err := rootDependencies.Session.Apply(ctx)
	stopSpinner(spinner)

	if err != nil {
		var snapErr *backup_manager.SnapshotError
		switch {
		case errors.As(err, &snapErr):
			fmt.Println(lipgloss.Red.Render("Backup failed, no file was changed."))
		case rootDependencies.Session.State() == session.PartiallyMutated:
			fmt.Println(lipgloss.Red.Render("Some files could not be rewritten. Run 'namefix rollback' to restore the backup."))
		}
		return err
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ %d replacements in %d files. Backup in %s",
		result.Replacements, result.FilesChanged, displayPath(rootDependencies.Cwd, rootDependencies.Backups.Dir()))))

	if cfg.Tidy.Enabled && !noTidy {
		runTidy(ctx, rootDependencies)
	}

	rootDependencies.Stats.DisplayStats(os.Stdout)
	return nil
}

func warnUncommittedChanges(ctx context.Context, rootDependencies *RootDependencies) {
	git := utils.NewGitOperations(rootDependencies.Config.SourceDir)
	if err := git.CheckGitRepo(ctx); err != nil {
		rootDependencies.Logger.Debug("not a git repository", rootDependencies.Logger.Args("error", err))
		return
	}

	changed, err := git.UncommittedChanges(ctx, rootDependencies.Session.Files().Files...)
	if err != nil {
		rootDependencies.Logger.Debug("git status failed", rootDependencies.Logger.Args("error", err))
		return
	}
	if len(changed) == 0 {
		return
	}

	fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: %d project files have uncommitted changes:", len(changed))))
	for _, f := range changed {
		fmt.Println(lipgloss.Gray.Render("  " + f))
	}
}

func runTidy(ctx context.Context, rootDependencies *RootDependencies) {
	spinner, _ := newSpinner().Start("Running clang-tidy...")
	result, err := rootDependencies.Session.RunFixer(ctx)
	stopSpinner(spinner)

	if err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: %v", err)))
		return
	}
	if result == nil {
		fmt.Println(lipgloss.Gray.Render("clang-tidy skipped: no source files."))
		return
	}
	fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("clang-tidy exited with code %d after %s.", result.ExitCode, result.Duration.Round(time.Millisecond))))
}
