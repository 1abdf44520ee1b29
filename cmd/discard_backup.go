package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akss-tools/namefix/backup_manager"
	"github.com/akss-tools/namefix/code_analyzer"
	"github.com/akss-tools/namefix/constants/lipgloss"
	"github.com/akss-tools/namefix/utils"
)

// discardBackupCmd represents the discard-backup command
var discardBackupCmd = &cobra.Command{
	Use:   "discard-backup",
	Short: "Remove the backup and the discovery cache",
	Long: `The 'discard-backup' command deletes the backup directory written by 'apply' together with
the discovery cache. After this, 'rollback' has nothing to restore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")
		return handleDiscardBackupCommand(cmd, force, stats)
	},
}

func init() {
	discardBackupCmd.Flags().BoolP("force", "f", false, "Remove without confirmation")
	discardBackupCmd.Flags().Bool("stats", false, "Show backup and cache statistics instead of removing them")

	rootCmd.AddCommand(discardBackupCmd)
}

func handleDiscardBackupCommand(cmd *cobra.Command, force bool, showStats bool) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}
	cfg := rootDependencies.Config

	var cache *code_analyzer.CacheManager
	if cfg.EnableCache {
		if cache, err = code_analyzer.NewCacheManager(cfg.CacheDir); err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: cache unavailable: %v", err)))
			cache = nil
		}
	}

	if showStats {
		printBackupStats(rootDependencies, cache)
		return nil
	}

	if !force {
		confirmed, err := utils.Confirm(context.Background(), bufio.NewReader(os.Stdin), os.Stdout,
			fmt.Sprintf("Remove the backup in %s? 'rollback' will no longer be possible.", displayPath(rootDependencies.Cwd, rootDependencies.Backups.Dir())))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Discard cancelled."))
			return nil
		}
	}

	spinner, _ := newSpinner().Start("Removing backup...")

	if err := rootDependencies.Backups.Discard(); err != nil {
		stopSpinner(spinner)
		return err
	}
	if cache != nil {
		if err := cache.ClearCache(); err != nil {
			stopSpinner(spinner)
			return err
		}
	}

	stopSpinner(spinner)
	fmt.Println(lipgloss.Green.Render("✓ Backup and discovery cache have been removed."))
	return nil
}

func printBackupStats(rootDependencies *RootDependencies, cache *code_analyzer.CacheManager) {
	fmt.Println(lipgloss.Info.Render("Backup Statistics:"))
	stats, err := rootDependencies.Backups.Stats()
	switch {
	case errors.Is(err, backup_manager.ErrNoBackup):
		fmt.Println("  No backup")
	case err != nil:
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: Could not show statistics: %v", err)))
	default:
		fmt.Printf("  Backup Directory: %s\n", stats.Dir)
		fmt.Printf("  Files: %d\n", stats.Files)
		fmt.Printf("  Total Size: %.2f KB\n", float64(stats.Bytes)/1024)
		fmt.Printf("  Created: %s\n", stats.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
	if cache == nil {
		fmt.Println("  Cache is disabled")
		return
	}
	cacheStats, err := cache.GetCacheStats()
	if err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: Could not show statistics: %v", err)))
		return
	}
	fmt.Printf("  Cache Directory: %s\n", cacheStats.Dir)
	fmt.Printf("  Cached Files: %d\n", cacheStats.Files)
	fmt.Printf("  Total Size: %.2f KB\n", float64(cacheStats.TotalSize)/1024)
}
