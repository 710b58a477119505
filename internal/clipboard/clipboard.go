// Package clipboard provides platform-specific clipboard operations.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// Command returns the clipboard command for the platform, or an error if none
// is available.
func Command(goos string) ([]string, error) {
	switch goos {
	case "linux":
		// Try different clipboard tools in order of preference
		tools := [][]string{
			{"wl-copy", "--type", "text/plain"},  // Wayland
			{"xclip", "-selection", "clipboard"}, // X11
			{"xsel", "--clipboard", "--input"},   // X11 alternative
		}
		for _, tool := range tools {
			if isCommandAvailable(tool[0]) {
				return tool, nil
			}
		}
		return nil, fmt.Errorf("no suitable clipboard tool found (tried: wl-copy, xclip, xsel)")
	case "darwin":
		return []string{"pbcopy"}, nil
	case "windows":
		return []string{"clip"}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// CopyText copies tab separated report text to the system clipboard so it
// pastes into spreadsheet cells.
func CopyText(text string) error {
	tool, err := Command(runtime.GOOS)
	if err != nil {
		return err
	}
	cmd := exec.Command(tool[0], tool[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", tool[0], err)
	}
	return nil
}

func isCommandAvailable(name string) bool {
	_, err := lookPath(name)
	return err == nil
}
