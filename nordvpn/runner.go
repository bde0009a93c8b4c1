package nordvpn

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yllada/nordvpn-gui/common"
)

// execRunner runs the nordvpn binary as a child process. It is the
// only place in the application that spawns processes.
type execRunner struct {
	binary string
}

// NewRunner returns a CommandRunner that invokes the nordvpn client.
func NewRunner() common.CommandRunner {
	return &execRunner{binary: common.NordVPNBinary}
}

// Run executes the client with the given arguments. The context bounds
// the whole invocation; on expiry the child is killed and
// common.ErrTimeout is returned.
//
// A non-zero exit code is not an error at this layer. The result is
// returned as-is and the caller decides what it means.
func (r *execRunner) Run(ctx context.Context, args ...string) (common.CommandResult, error) {
	// Correlation ID ties the start and finish log lines of one
	// invocation together.
	id := uuid.New().String()[:8]
	start := time.Now()

	common.LogDebug("[%s] running %s %s", id, r.binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := time.Since(start).Round(time.Millisecond)

	result := common.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		// The context ending kills the child, so its exit status is
		// meaningless. Report the context's verdict instead.
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				common.LogWarn("[%s] %s timed out after %s", id, args[0], elapsed)
				return result, common.WrapError(common.ErrTimeout, args[0])
			}
			common.LogDebug("[%s] %s canceled after %s", id, args[0], elapsed)
			return result, common.WrapError(ctxErr, args[0])
		}
		if errors.Is(err, exec.ErrNotFound) {
			return result, common.ErrNotInstalled
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			common.LogDebug("[%s] %s exited %d in %s", id, args[0], result.ExitCode, elapsed)
			return result, nil
		}
		common.LogError("[%s] %s failed: %v", id, args[0], err)
		return result, common.WrapError(err, "failed to run "+r.binary)
	}

	common.LogDebug("[%s] %s finished in %s", id, args[0], elapsed)
	return result, nil
}

// CheckInstalled verifies that the nordvpn binary is on PATH.
func CheckInstalled() error {
	if _, err := exec.LookPath(common.NordVPNBinary); err != nil {
		return common.ErrNotInstalled
	}
	return nil
}
