package ingest

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/JonMunkholm/tabinspect/internal/logging"
)

// Installer installs an optional runtime package on demand.
type Installer interface {
	// Install returns true when pkg was installed. It never panics.
	Install(ctx context.Context, pkg string) bool
}

// CommandInstaller runs the host package manager as a subprocess.
type CommandInstaller struct {
	// Command is the package manager invocation, e.g. ["apt-get", "install", "-y"].
	// The package name is appended as the last argument.
	Command []string
	// Enabled must be true for anything to run.
	Enabled bool
	// Timeout bounds the subprocess; zero means it runs until it exits.
	Timeout time.Duration
	// Out receives the package manager output and the outcome line.
	Out io.Writer
}

// Install runs Command with pkg. A zero exit status is success.
func (i *CommandInstaller) Install(ctx context.Context, pkg string) bool {
	logger := logging.WithFields(ctx, "package", pkg)
	out := i.Out
	if out == nil {
		out = io.Discard
	}

	if !i.Enabled {
		fmt.Fprintf(out, "Automatic installation is disabled; install %s and try again\n", pkg)
		logger.Info("dependency install skipped", "reason", "disabled")
		return false
	}
	if len(i.Command) == 0 || pkg == "" {
		fmt.Fprintf(out, "Could not install %q: no package manager command configured\n", pkg)
		logger.Warn("dependency install skipped", "reason", "no command")
		return false
	}

	if i.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, i.Command[1:]...), pkg)
	cmd := exec.CommandContext(ctx, i.Command[0], args...)
	cmd.Stdout = out
	cmd.Stderr = out

	fmt.Fprintf(out, "Installing %s with %s...\n", pkg, i.Command[0])
	start := time.Now()
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(out, "Could not install %s: %v\n", pkg, err)
		logger.Warn("dependency install failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return false
	}

	fmt.Fprintf(out, "%s installed successfully\n", pkg)
	logger.Info("dependency installed", "duration_ms", time.Since(start).Milliseconds())
	return true
}
