package infrastructure

import (
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

// Command constants
const (
	openCommand     = "open"
	explorerCommand = "explorer"
	xdgOpenCommand  = "xdg-open"
)

// linuxFileManagers are tried in order when xdg-open is missing
var linuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}

// launchFunc starts a program without waiting for it to exit
type launchFunc func(name string, args ...string) error

// FolderOpener implements domain.FolderOpener with the desktop file browser
type FolderOpener struct {
	goos     string
	launch   launchFunc
	lookPath func(file string) (string, error)
	logger   *zap.Logger
}

// NewFolderOpener creates a folder opener for the running OS
func NewFolderOpener(logger *zap.Logger) *FolderOpener {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &FolderOpener{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		logger:   logger,
	}
	o.launch = o.startDetached
	return o
}

// Open shows dir in the file browser
func (o *FolderOpener) Open(dir string) error {
	name, args, err := o.command(dir)
	if err != nil {
		return err
	}

	if err := o.launch(name, args...); err != nil {
		return fmt.Errorf("failed to open folder with %s: %w", name, err)
	}
	o.logger.Debug("Opened folder", zap.String("dir", dir), zap.String("command", name))
	return nil
}

// command picks the program used to show dir
func (o *FolderOpener) command(dir string) (string, []string, error) {
	switch o.goos {
	case "darwin":
		return openCommand, []string{dir}, nil
	case "windows":
		return explorerCommand, []string{dir}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		if _, err := o.lookPath(xdgOpenCommand); err == nil {
			return xdgOpenCommand, []string{dir}, nil
		}
		for _, fm := range linuxFileManagers {
			if _, err := o.lookPath(fm); err == nil {
				return fm, []string{dir}, nil
			}
		}
		return "", nil, fmt.Errorf("no suitable file manager found")
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s", o.goos)
	}
}

// startDetached starts the file browser and reaps it in the background
func (o *FolderOpener) startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			o.logger.Debug("File browser exited with error", zap.String("command", name), zap.Error(err))
		}
	}()
	return nil
}
