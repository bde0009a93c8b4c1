package nordvpn

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yllada/nordvpn-gui/common"
)

func TestRunnerCapturesOutput(t *testing.T) {
	r := &execRunner{binary: "sh"}

	result, err := r.Run(context.Background(), "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("Stdout = %q, want out", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "err" {
		t.Errorf("Stderr = %q, want err", result.Stderr)
	}
}

func TestRunnerNonZeroExitIsNotAnError(t *testing.T) {
	r := &execRunner{binary: "sh"}

	result, err := r.Run(context.Background(), "-c", "exit 3")
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestRunnerTimeout(t *testing.T) {
	r := &execRunner{binary: "sleep"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, "5")
	if !errors.Is(err, common.ErrTimeout) {
		t.Errorf("Run() error = %v, want ErrTimeout", err)
	}
}

func TestRunnerCanceledContext(t *testing.T) {
	r := &execRunner{binary: "sleep"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, "5")
	if err == nil {
		t.Fatal("Run() error = nil, want cancellation")
	}
	if errors.Is(err, common.ErrTimeout) {
		t.Errorf("Run() error = %v, cancellation must not report a timeout", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunnerMissingBinary(t *testing.T) {
	r := &execRunner{binary: "definitely-not-installed-anywhere"}

	_, err := r.Run(context.Background(), "status")
	if !errors.Is(err, common.ErrNotInstalled) {
		t.Errorf("Run() error = %v, want ErrNotInstalled", err)
	}
}
