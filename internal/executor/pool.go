package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	benchErrors "github.com/parbench/parbench/internal/errors"
	"github.com/parbench/parbench/internal/wire"
)

// WorkerFlag is the flag that puts the parbench binary into worker mode.
const WorkerFlag = "-worker"

// PoolConfig holds configuration for worker processes.
type PoolConfig struct {
	// Command is the worker executable (default: the running binary)
	Command string

	// Args are passed to Command (default: ["-worker"])
	Args []string

	// Env is appended to the parent environment
	Env []string

	// Stderr receives worker diagnostics (default: os.Stderr)
	Stderr io.Writer
}

// DefaultPoolConfig returns a configuration that re-executes the current
// binary in worker mode.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Args: []string{WorkerFlag}}
}

func (c PoolConfig) resolve() (PoolConfig, error) {
	if c.Command == "" {
		exe, err := os.Executable()
		if err != nil {
			return c, benchErrors.NewWorkerError(benchErrors.CodeWorkerSpawnFailed, "resolve worker executable", err)
		}
		c.Command = exe
		if len(c.Args) == 0 {
			c.Args = []string{WorkerFlag}
		}
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	return c, nil
}

// workerProcess is one running worker and its framed pipes.
type workerProcess struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	w     *wire.Writer
	r     *wire.Reader
}

// roundTrip sends one task and waits for its result.
func (p *workerProcess) roundTrip(task wire.Task) (wire.Result, error) {
	if err := p.w.WriteTask(task); err != nil {
		return wire.Result{}, benchErrors.Wrap(benchErrors.ErrCategoryWorker, benchErrors.CodeWorkerProtocol,
			fmt.Sprintf("send chunk %d to pid %d", task.Ordinal, p.cmd.Process.Pid), err)
	}
	res, err := p.r.ReadResult()
	if err != nil {
		return wire.Result{}, benchErrors.Wrap(benchErrors.ErrCategoryWorker, benchErrors.CodeWorkerProtocol,
			fmt.Sprintf("receive chunk %d from pid %d", task.Ordinal, p.cmd.Process.Pid), err)
	}
	if res.Ordinal != task.Ordinal {
		return wire.Result{}, benchErrors.New(benchErrors.ErrCategoryWorker, benchErrors.CodeWorkerProtocol,
			fmt.Sprintf("pid %d answered chunk %d with ordinal %d", p.cmd.Process.Pid, task.Ordinal, res.Ordinal))
	}
	return res, nil
}

// kill stops a worker whose stream can no longer be trusted.
func (p *workerProcess) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// ProcessGroup is a fixed set of worker processes living for a single
// strategy call.
type ProcessGroup struct {
	mu     sync.Mutex
	procs  []*workerProcess
	closed bool
}

// StartProcessGroup spawns n worker processes. On failure any processes
// already started are torn down.
func StartProcessGroup(ctx context.Context, cfg PoolConfig, n int) (*ProcessGroup, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	g := &ProcessGroup{procs: make([]*workerProcess, 0, n)}
	for i := 0; i < n; i++ {
		p, err := spawn(ctx, cfg)
		if err != nil {
			g.Close()
			return nil, benchErrors.NewWorkerError(benchErrors.CodeWorkerSpawnFailed,
				fmt.Sprintf("start worker %d of %d", i+1, n), err)
		}
		g.procs = append(g.procs, p)
	}
	return g, nil
}

func spawn(ctx context.Context, cfg PoolConfig) (*workerProcess, error) {
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stderr = cfg.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, err
	}

	return &workerProcess{
		cmd:   cmd,
		stdin: stdin,
		w:     wire.NewWriter(stdin),
		r:     wire.NewReader(stdout),
	}, nil
}

// Size returns the number of processes in the group.
func (g *ProcessGroup) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.procs)
}

// Close closes every worker's stdin and waits for it to exit.
func (g *ProcessGroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true

	var errs []error
	for _, p := range g.procs {
		if err := p.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	for _, p := range g.procs {
		if err := p.cmd.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("worker pid %d: %w", p.cmd.Process.Pid, err))
		}
	}
	return errors.Join(errs...)
}

// PoolStats reports cumulative process activity for a ProcessPool.
type PoolStats struct {
	Calls            int64
	ProcessesSpawned int64
	ChunksSent       int64
	ChunksFailed     int64
}
