package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// CommandResult is the outcome of a finished external command.
type CommandResult struct {
	Command  []string
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// CommandExecutor runs external tools directly, without a shell.
type CommandExecutor struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Output, if set, receives the combined output while the command runs.
	Output io.Writer
}

// NewCommandExecutor creates a new command executor instance
func NewCommandExecutor(dir string) *CommandExecutor {
	return &CommandExecutor{Dir: dir}
}

// Run executes name with args. A non-zero exit status is reported in the result, not as an
// error; errors mean the command could not be started or was cancelled.
func (ce *CommandExecutor) Run(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	path, err := ce.validateCommand(name)
	if err != nil {
		return nil, fmt.Errorf("command validation failed: %w", err)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if ce.Output != nil {
		out = io.MultiWriter(&buf, ce.Output)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = ce.Dir
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	err = cmd.Run()
	result := &CommandResult{
		Command:  append([]string{name}, args...),
		Output:   buf.Bytes(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("command execution failed: %w", err)
	}

	return result, nil
}

// validateCommand resolves name on PATH. Shell syntax is rejected since nothing is run
// through a shell.
func (ce *CommandExecutor) validateCommand(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty command provided")
	}
	if strings.ContainsAny(name, "|;&$`<>") {
		return "", fmt.Errorf("command name %q contains shell syntax", name)
	}
	return exec.LookPath(name)
}

// String renders the command line for logs.
func (r *CommandResult) String() string {
	return strings.Join(r.Command, " ")
}
