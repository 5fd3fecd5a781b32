// Package process runs external commands for the sync engine.
package process

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/aki/treesync/internal/core/logger"
)

// Invoker runs an external command synchronously and returns its standard
// output. Implementations never return an error: a command that cannot be
// launched yields "", which callers treat as "no data available".
type Invoker interface {
	Run(name string, args []string, dir string) string
}

// ExecInvoker implements Invoker with os/exec. There is no timeout; a hung
// command blocks the caller.
type ExecInvoker struct {
	logger logger.Logger
}

// NewExecInvoker creates an invoker that logs every call at debug level
func NewExecInvoker(log logger.Logger) *ExecInvoker {
	if log == nil {
		log = logger.Nop()
	}
	return &ExecInvoker{logger: log}
}

// Run executes name with args in dir. Stdout produced before a non-zero exit
// is still returned.
func (e *ExecInvoker) Run(name string, args []string, dir string) string {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	output, err := cmd.Output()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.logger.Debug("command exited with failure",
				"cmd", name, "args", args, "dir", dir,
				"code", exitErr.ExitCode(),
				"stderr", strings.TrimSpace(stderr.String()),
				"elapsed", elapsed)
			return string(output)
		}
		e.logger.Warn("failed to launch command", "cmd", name, "args", args, "dir", dir, "error", err)
		return ""
	}

	e.logger.Debug("command finished", "cmd", name, "args", args, "dir", dir, "bytes", len(output), "elapsed", elapsed)
	return string(output)
}

// Default is an ExecInvoker without logging
var Default Invoker = NewExecInvoker(nil)

// Run is a convenience wrapper around Default
func Run(name string, args []string, dir string) string {
	return Default.Run(name, args, dir)
}
