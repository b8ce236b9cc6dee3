package patcher

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Executor abstracts patcher invocations for testability.
type Executor interface {
	// Run executes binary to completion. A non-zero exit is an error.
	Run(ctx context.Context, binary string, args []string) error
	// Start launches binary without waiting for it.
	Start(binary string, args []string) (Process, error)
}

// Process is a handle to a started patcher process.
type Process interface {
	Pid() int
	Kill() error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	if err != nil {
		if tail := lastLines(string(out), 5); tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}
	return nil
}

func (commandExecutor) Start(binary string, args []string) (Process, error) {
	cmd := exec.Command(binary, args...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p := &commandProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type commandProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

func (p *commandProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Kill signals the process once and does not wait for it to exit. Killing an
// already exited process is not an error.
func (p *commandProcess) Kill() error {
	var err error
	p.once.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}
		err = p.cmd.Process.Kill()
	})
	select {
	case <-p.done:
		return nil
	default:
		return err
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
