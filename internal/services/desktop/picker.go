package desktop

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/phambaophuc/image-export/internal/services/export"
	"go.uber.org/zap"
)

const windowsPickerScript = `Add-Type -AssemblyName System.Windows.Forms; ` +
	`$d = New-Object System.Windows.Forms.FolderBrowserDialog; ` +
	`if ($d.ShowDialog() -eq 'OK') { $d.SelectedPath }`

// FolderPicker opens the native folder dialog of the machine the service
// runs on.
type FolderPicker struct {
	goos   string
	logger *zap.Logger
	output func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewFolderPicker(logger *zap.Logger) *FolderPicker {
	return &FolderPicker{
		goos:   runtime.GOOS,
		logger: logger,
		output: commandOutput,
	}
}

// PickFolder returns the chosen folder, or export.ErrNoSelection when the
// dialog was dismissed.
func (p *FolderPicker) PickFolder(ctx context.Context) (string, error) {
	name, args := pickerCommand(p.goos)

	out, err := p.output(ctx, name, args...)
	folder := strings.TrimSpace(string(out))

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// zenity and osascript exit non-zero on cancel
		p.logger.Debug("Folder dialog dismissed", zap.Int("exit_code", exitErr.ExitCode()))
		return "", export.ErrNoSelection
	}
	if err != nil {
		return "", fmt.Errorf("failed to open folder dialog: %w", err)
	}
	if folder == "" {
		return "", export.ErrNoSelection
	}
	return folder, nil
}

func pickerCommand(goos string) (string, []string) {
	switch goos {
	case "windows":
		return "powershell", []string{"-NoProfile", "-Command", windowsPickerScript}
	case "darwin":
		return "osascript", []string{"-e", "POSIX path of (choose folder)"}
	default:
		return "zenity", []string{"--file-selection", "--directory"}
	}
}

func commandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
