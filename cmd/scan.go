package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/constants/lipgloss"
	"github.com/akss-tools/namefix/rename_planner"
	"github.com/akss-tools/namefix/utils"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the renames namefix would apply",
	Long: `The 'scan' command discovers the declarations of the source and include directories and
lists the proposed rename of every symbol. No file is modified. Use --diff to preview the
rewritten files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sortBy, _ := cmd.Flags().GetString("sort")
		reverse, _ := cmd.Flags().GetBool("reverse")
		all, _ := cmd.Flags().GetBool("all")
		diff, _ := cmd.Flags().GetBool("diff")

		var column rename_planner.Column
		if sortBy != "" {
			var err error
			if column, err = rename_planner.ParseColumn(sortBy); err != nil {
				return err
			}
		}

		return handleScanCommand(cmd, column, reverse, all, diff)
	},
}

func init() {
	scanCmd.Flags().String("sort", "", "Sort the listing by column: file, type, old or new.")
	scanCmd.Flags().BoolP("reverse", "r", false, "Reverse the sort order.")
	scanCmd.Flags().BoolP("all", "a", false, "Include symbols that already follow their convention.")
	scanCmd.Flags().BoolP("diff", "d", false, "Show a unified diff of every file that would change.")

	rootCmd.AddCommand(scanCmd)
}

func handleScanCommand(cmd *cobra.Command, column rename_planner.Column, reverse, all, diff bool) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	plan, ok, err := scanAndPlan(ctx, rootDependencies)
	if err != nil || !ok {
		return err
	}

	listed := plan
	if !all {
		listed = effectiveRenames(plan)
	}
	if column != "" {
		listed = rename_planner.SortBy(listed, column, reverse)
	}

	if len(listed) == 0 {
		fmt.Println(lipgloss.Green.Render("✓ Every symbol already follows its convention."))
	} else if err := renderPlan(rootDependencies.Cwd, listed); err != nil {
		return err
	}
	printPlanSummary(plan)

	if diff {
		return renderPreview(rootDependencies)
	}
	return nil
}

// scanAndPlan runs a scan with a spinner and reports discovery problems. ok is false when
// nothing was found.
func scanAndPlan(ctx context.Context, rootDependencies *RootDependencies) ([]models.Rename, bool, error) {
	spinner, _ := newSpinner().Start("Scanning project...")
	report, err := rootDependencies.Session.Scan(ctx)
	stopSpinner(spinner)
	if err != nil {
		return nil, false, err
	}

	for _, e := range report.DiscoveryErrors {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: %v", e)))
	}

	if report.Symbols == 0 {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("No symbols found in %d files under %s.",
			report.Files.Len(), displayPath(rootDependencies.Cwd, rootDependencies.Config.SourceDir))))
		return nil, false, nil
	}

	plan, err := rootDependencies.Session.Plan()
	if err != nil {
		return nil, false, err
	}
	return plan, true, nil
}

func effectiveRenames(plan []models.Rename) []models.Rename {
	var out []models.Rename
	for _, r := range plan {
		if !r.IsNoop() || r.Flagged() {
			out = append(out, r)
		}
	}
	return out
}

func renderPlan(cwd string, renames []models.Rename) error {
	data := pterm.TableData{{"File", "Type", "Old", "New", "Flags"}}
	for _, r := range renames {
		newName := r.New
		if r.Flagged() {
			newName = lipgloss.Red.Render(newName)
		} else if r.IsNoop() {
			newName = lipgloss.Gray.Render(newName)
		}
		data = append(data, []string{
			displayPath(cwd, r.File),
			r.Kind.String(),
			r.Old,
			newName,
			strings.Join(r.Flags, ","),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printPlanSummary(plan []models.Rename) {
	changes, noops, flagged := 0, 0, 0
	for _, r := range plan {
		switch {
		case r.IsNoop():
			noops++
		default:
			changes++
		}
		if r.Flagged() {
			flagged++
		}
	}
	fmt.Println(lipgloss.Info.Render(fmt.Sprintf("%d renames planned, %d unchanged.", changes, noops)))
	if flagged > 0 {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("%d renames are flagged and should be reviewed by hand.", flagged)))
	}
}

func renderPreview(rootDependencies *RootDependencies) error {
	changes, err := rootDependencies.Session.Preview()
	if err != nil {
		return err
	}
	for _, c := range changes {
		name := displayPath(rootDependencies.Cwd, c.Path)
		d, err := utils.Diff(name, []byte(c.Before), name, []byte(c.After))
		if err != nil {
			return err
		}
		if err := utils.RenderDiff(os.Stdout, string(d), rootDependencies.Config.Theme); err != nil {
			return err
		}
	}
	return nil
}
