package action

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/google/shlex"
)

// DefaultViewer opens files whose type has no dedicated viewer.
const DefaultViewer = "vim %s"

// ErrEmptyTemplate is returned when a command template has no program.
var ErrEmptyTemplate = errors.New("empty command template")

// Viewers maps a file type to a command template; %s is replaced by the file name.
type Viewers map[string]string

// For returns the viewer template for filetype, falling back to "default".
func (v Viewers) For(filetype string) string {
	if t, ok := v[filetype]; ok && t != "" {
		return t
	}
	if t, ok := v["default"]; ok && t != "" {
		return t
	}
	return DefaultViewer
}

// SplitTemplate splits a command template into argv and substitutes placeholder
// inside each argument with value. The value is never re-split, so it always
// stays within the argument it was placed in. When no argument holds the
// placeholder, value is appended as the last argument.
func SplitTemplate(template, placeholder, value string) ([]string, error) {
	args, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", template, err)
	}
	if len(args) == 0 {
		return nil, ErrEmptyTemplate
	}
	found := false
	for i, a := range args {
		if strings.Contains(a, placeholder) {
			args[i] = strings.ReplaceAll(a, placeholder, value)
			found = true
		}
	}
	if !found {
		args = append(args, value)
	}
	return args, nil
}

// RunShell runs command through sh attached to the current terminal.
func RunShell(command string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %q: %w", command, err)
	}
	return nil
}

// OpenFile opens filename with the viewer template, optionally from dir.
func OpenFile(template, filename, dir string) error {
	args, err := SplitTemplate(template, "%s", filename)
	if err != nil {
		return err
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}
	return nil
}

// Copy puts text on the system clipboard. Empty text is ignored.
func Copy(text string) error {
	if text == "" {
		return nil
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// Inject pushes text into the controlling terminal's input queue so it shows
// up on the shell prompt after exit. Where the terminal refuses, the text is
// printed instead.
func Inject(text string) error {
	if err := injectTerminal(text); err != nil {
		log.Printf("terminal injection unavailable: %v", err)
		_, werr := fmt.Fprintln(os.Stdout, text)
		return werr
	}
	return nil
}
