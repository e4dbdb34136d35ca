// Package desktop talks to the platform shell: it reveals exported files in
// the file manager and asks the user for an export folder.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pkg/browser"
	"go.uber.org/zap"
)

var ErrEmptyPath = errors.New("no path to reveal")

// Revealer shows paths in the platform file manager.
type Revealer struct {
	goos     string
	logger   *zap.Logger
	run      func(ctx context.Context, name string, args ...string) error
	openFile func(path string) error
}

func NewRevealer(logger *zap.Logger) *Revealer {
	return &Revealer{
		goos:     runtime.GOOS,
		logger:   logger,
		run:      runCommand,
		openFile: browser.OpenFile,
	}
}

// Reveal selects path in the file manager. Directories are opened; on
// platforms without a select gesture the containing folder is opened.
func (r *Revealer) Reveal(ctx context.Context, path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to reveal %s: %w", path, err)
	}

	name, args, ok := revealCommand(r.goos, path, info.IsDir())
	if !ok {
		dir := path
		if !info.IsDir() {
			dir = filepath.Dir(path)
		}
		r.logger.Debug("Opening folder", zap.String("path", dir))
		return r.openFile(dir)
	}

	r.logger.Debug("Revealing path", zap.String("path", path), zap.String("command", name))
	return r.run(ctx, name, args...)
}

// revealCommand returns the platform command that reveals path. ok is false
// when the platform has none and the folder should be opened instead.
func revealCommand(goos, path string, isDir bool) (name string, args []string, ok bool) {
	switch goos {
	case "windows":
		if isDir {
			return "explorer", []string{path}, true
		}
		return "explorer", []string{"/select," + path}, true
	case "darwin":
		if isDir {
			return "open", []string{path}, true
		}
		return "open", []string{"-R", path}, true
	}
	return "", nil, false
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	// explorer exits with 1 even on success
	go cmd.Wait()
	return nil
}
