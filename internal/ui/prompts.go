package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// DirectoryPrompt is shown when no directory argument is given
const DirectoryPrompt = "Enter the directory to scan for PNGs with spaces: "

// ErrInterrupted is returned when the user aborts a prompt with Ctrl-C
var ErrInterrupted = terminal.InterruptErr

// PromptDirectory asks for the directory to sweep and returns the line
// trimmed of surrounding whitespace. End of input yields an empty answer.
func (u *UI) PromptDirectory() (string, error) {
	if u.interactive {
		var result string
		p := &survey.Input{
			Message: strings.TrimSuffix(strings.TrimSpace(DirectoryPrompt), ":"),
		}
		if err := survey.AskOne(p, &result); err != nil {
			return "", err
		}
		return strings.TrimSpace(result), nil
	}

	fmt.Fprint(u.output, DirectoryPrompt)

	line, err := bufio.NewReader(u.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read directory: %w", err)
	}
	return strings.TrimSpace(line), nil
}
