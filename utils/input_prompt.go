package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akss-tools/namefix/constants/lipgloss"
)

// InputPromptWithContext prints question and reads one line, returning early if ctx is done.
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader, out io.Writer, question string) (string, error) {
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	fmt.Fprint(out, lipgloss.BlueSky.Render(question+" "))

	go func() {
		userInput, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			errChan <- fmt.Errorf("error reading input: %w", err)
			return
		}
		inputChan <- strings.TrimSpace(userInput)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case input := <-inputChan:
		return input, nil
	}
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func Confirm(ctx context.Context, reader *bufio.Reader, out io.Writer, question string) (bool, error) {
	answer, err := InputPromptWithContext(ctx, reader, out, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
