package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// DefaultStopTimeout is the grace period between SIGTERM and a kill
const DefaultStopTimeout = 10 * time.Second

// Options configure the exec adapter
type Options struct {
	// Binary is the launcher binary name or path. An empty value falls
	// back to the default binary looked up on PATH.
	Binary string

	// StopTimeout is how long Stop waits for a graceful exit before
	// killing the process
	StopTimeout time.Duration
}

// Exec drives the Osprey launcher binary as a child process. Channel
// queries read the resolved build from the launcher's stdout; launches
// run until the application's top-level window closes.
type Exec struct {
	binary      string
	stopTimeout time.Duration
	log         types.Logger
}

// NewExec creates an exec adapter
func NewExec(opts Options, log types.Logger) *Exec {
	binary := opts.Binary
	if binary == "" {
		binary = consts.DefaultLauncherBinary
	}
	stopTimeout := opts.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Exec{
		binary:      binary,
		stopTimeout: stopTimeout,
		log:         log,
	}
}

// Installed reports whether the launcher binary can be found. A missing
// binary is a warning, not an error: commands that never launch the
// runtime still work without it.
func (e *Exec) Installed() bool {
	if _, err := exec.LookPath(e.binary); err != nil {
		e.log.Warn("runtime launcher not found",
			"binary", e.binary,
			"error", err,
		)
		return false
	}
	return true
}

// ResolveChannel asks the launcher which build a release channel points at
func (e *Exec) ResolveChannel(ctx context.Context, channel string) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, "--resolve", channel)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", types.WrapError(types.ErrRuntimeNotInstalled,
				fmt.Sprintf("resolving channel %s: %s", channel, strings.TrimSpace(string(exitErr.Stderr))))
		}
		return "", types.WrapError(types.ErrRuntimeNotInstalled,
			fmt.Sprintf("resolving channel %s: %v", channel, err))
	}

	build := strings.TrimSpace(string(out))
	if build == "" {
		return "", types.WrapError(types.ErrRuntimeNotInstalled,
			fmt.Sprintf("launcher reported no build for channel %s", channel))
	}

	e.log.Debug("channel resolved by launcher", "channel", channel, "build", build)
	return build, nil
}

// Launch starts the runtime against a manifest URL. The launcher's output
// is passed through to the terminal.
func (e *Exec) Launch(ctx context.Context, manifestURL string) (types.RunningApp, error) {
	cmd := exec.CommandContext(ctx, e.binary, "--manifest", manifestURL)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, types.WrapError(types.ErrLaunchFailed,
			fmt.Sprintf("starting %s: %v", e.binary, err))
	}

	a := &app{
		cmd:         cmd,
		done:        make(chan error, 1),
		stopTimeout: e.stopTimeout,
		log:         e.log,
	}

	// Reap the process in the background. The exit error is buffered and
	// the channel closed, so any number of receives settle after exit.
	go func() {
		a.done <- cmd.Wait()
		close(a.done)
	}()

	e.log.Info("runtime launched",
		"manifest", manifestURL,
		"pid", cmd.Process.Pid,
	)

	return a, nil
}

// app is a handle on a launched runtime process
type app struct {
	cmd         *exec.Cmd
	done        chan error
	stopTimeout time.Duration
	log         types.Logger

	stopOnce sync.Once
	stopErr  error
}

// PID returns the launcher process ID
func (a *app) PID() int {
	return a.cmd.Process.Pid
}

// Done yields the process exit error once the application closes
func (a *app) Done() <-chan error {
	return a.done
}

// Stop terminates the application: SIGTERM first, then a kill when the
// grace period or the context expires
func (a *app) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.stopErr = a.stop(ctx)
	})
	return a.stopErr
}

func (a *app) stop(ctx context.Context) error {
	if err := a.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Likely already gone; a kill settles it either way
		_ = a.cmd.Process.Kill()
		<-a.done
		return nil
	}

	select {
	case <-a.done:
		a.log.Debug("runtime stopped gracefully", "pid", a.cmd.Process.Pid)
		return nil
	case <-ctx.Done():
	case <-time.After(a.stopTimeout):
		a.log.Warn("runtime did not stop gracefully, killing",
			"pid", a.cmd.Process.Pid,
		)
	}

	if err := a.cmd.Process.Kill(); err != nil {
		return types.WrapError(err, "killing runtime process")
	}
	<-a.done
	return nil
}
