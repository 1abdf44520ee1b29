package utils

import (
	"context"
	"fmt"
	"strings"
)

// GitOperations handles git-related operations
type GitOperations struct {
	workingDir string
	executor   *CommandExecutor
}

// NewGitOperations creates a new GitOperations instance
func NewGitOperations(workingDir string) *GitOperations {
	return &GitOperations{workingDir: workingDir, executor: NewCommandExecutor(workingDir)}
}

// CheckGitRepo checks if the working directory is inside a git repository
func (g *GitOperations) CheckGitRepo(ctx context.Context) error {
	res, err := g.executor.Run(ctx, "git", "rev-parse", "--git-dir")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("not a git repository")
	}
	return nil
}

// UncommittedChanges lists the given paths that have staged, unstaged or untracked changes.
// With no paths the whole working tree is checked.
func (g *GitOperations) UncommittedChanges(ctx context.Context, paths ...string) ([]string, error) {
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	res, err := g.executor.Run(ctx, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get git status: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("failed to get git status: %s", strings.TrimSpace(string(res.Output)))
	}

	var changed []string
	for _, line := range strings.Split(string(res.Output), "\n") {
		if len(line) > 3 {
			changed = append(changed, strings.TrimSpace(line[3:]))
		}
	}
	return changed, nil
}
