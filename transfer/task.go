package transfer

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// GracePeriod is how long Cancel waits after SIGTERM before escalating to
// SIGKILL, per spec.md §5's "terminate-then-kill sequence with a bounded
// grace period".
const GracePeriod = 5 * time.Second

// Result is a completed invocation's outcome.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Task is a cancellable handle over one rclone subprocess invocation,
// grounded on the teacher's errgroup-based task patterns generalised onto
// spec.md §5's start/cancel model: the core awaits the subprocess via an
// errgroup.Group alongside a context that Cancel triggers.
type Task struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	group  *errgroup.Group

	mu     sync.Mutex
	result Result
	err    error
}

// Start launches binary with args under ctx and returns immediately; call
// Wait to block for completion, or Cancel to terminate it early.
func Start(ctx context.Context, binary string, args []string) *Task {
	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g, _ := errgroup.WithContext(runCtx)
	t := &Task{cmd: cmd, cancel: cancel, group: g}

	g.Go(func() error {
		runErr := cmd.Run()
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		t.mu.Lock()
		t.result = Result{
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
		t.mu.Unlock()
		return runErr
	})

	return t
}

// Wait blocks until the subprocess exits, then returns its categorised
// result. The planner never retries; it surfaces the binary's exit code
// and stderr verbatim (spec.md §4.5's "Failure semantics").
func (t *Task) Wait() (Result, error) {
	runErr := t.group.Wait()
	t.mu.Lock()
	result := t.result
	t.mu.Unlock()

	if runErr == nil {
		return result, nil
	}
	return result, categorizeFailure(result, runErr)
}

// Cancel issues a terminate-then-kill sequence: SIGTERM, then SIGKILL
// after GracePeriod if the process has not exited, per spec.md §5.
func (t *Task) Cancel() {
	if t.cmd.Process == nil {
		t.cancel()
		return
	}
	_ = t.cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		_ = t.group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(GracePeriod):
		_ = t.cmd.Process.Kill()
	}
	t.cancel()
}

// categorizeFailure maps a non-zero exit / run error onto the taxonomy
// codes named in spec.md §4.5: AuthFailed, NetworkError, PartialTransfer,
// Fatal. rclone's own exit codes: 1 generic, 2 usage error, 3 directory
// not found, 4 file not found, 5 temporary (network) error, 6 fatal
// permission/auth error, 7 transfer exceeded max duration, 8 max transfer
// reached, 9 some files not transferred (partial).
func categorizeFailure(result Result, runErr error) error {
	switch result.ExitCode {
	case 5:
		return dserr.NewWithPath(dserr.CodeNetworkError, "rclone reported a temporary network error", result.Stderr)
	case 6:
		return dserr.NewWithPath(dserr.CodeAuthFailed, "rclone reported a fatal permission/auth error", result.Stderr)
	case 9:
		return dserr.NewWithPath(dserr.CodePartialTransfer, "some files failed to transfer", result.Stderr)
	case 0:
		return nil
	default:
		return dserr.NewWithPath(dserr.CodeFatal, "rclone exited with an unhandled error", result.Stderr)
	}
}
