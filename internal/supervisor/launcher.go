package supervisor

import (
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/GriffinCanCode/mist/internal/result"
)

// LaunchSpec describes one helper launch.
type LaunchSpec struct {
	Path string
	// Dir is the working directory. On Linux it is also prepended to
	// LD_LIBRARY_PATH so the helper finds libraries shipped next to it.
	Dir  string
	Args []string
	// Env is appended to the parent environment.
	Env []string
}

// Process is a running helper.
type Process interface {
	// Stdin carries frames to the helper.
	Stdin() io.WriteCloser
	// Stdout carries frames from the helper.
	Stdout() io.ReadCloser
	Pid() int
	// Wait blocks until the helper exits. It is called exactly once.
	Wait() error
	Kill() error
}

// Launcher starts helper processes. Launch returns SubprocessNotFound or
// SubprocessSpawnError result errors.
type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (Process, error)
}

// ExecLauncher starts the helper as an operating system process.
type ExecLauncher struct {
	// Stderr receives the helper's log output. Defaults to os.Stderr.
	Stderr io.Writer
}

// Launch implements Launcher
func (l ExecLauncher) Launch(_ context.Context, spec LaunchSpec) (Process, error) {
	path, err := filepath.Abs(spec.Path)
	if err != nil {
		return nil, result.Wrap(result.SubprocessSpawnError, err, "resolving helper path")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, result.Wrap(result.SubprocessNotFound, err, path)
		}
		return nil, result.Wrap(result.SubprocessSpawnError, err, path)
	}
	if info.IsDir() {
		return nil, result.Mistf(result.SubprocessNotFound, "%s is a directory", path)
	}

	// exec.Command rather than CommandContext: the helper outlives the
	// context that started it.
	cmd := exec.Command(path, spec.Args...)
	cmd.Env = append(os.Environ(), spec.Env...)
	if spec.Dir != "" {
		dir, err := filepath.Abs(spec.Dir)
		if err != nil {
			return nil, result.Wrap(result.SubprocessSpawnError, err, "resolving helper directory")
		}
		cmd.Dir = dir
		if runtime.GOOS == "linux" {
			cmd.Env = append(cmd.Env, "LD_LIBRARY_PATH="+prependPath(dir, os.Getenv("LD_LIBRARY_PATH")))
		}
	}
	cmd.Stderr = l.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	// Own the pipes so Wait does not close our ends under the reader.
	childIn, parentIn, err := os.Pipe()
	if err != nil {
		return nil, result.Wrap(result.SubprocessSpawnError, err, "creating stdin pipe")
	}
	parentOut, childOut, err := os.Pipe()
	if err != nil {
		childIn.Close()
		parentIn.Close()
		return nil, result.Wrap(result.SubprocessSpawnError, err, "creating stdout pipe")
	}
	cmd.Stdin = childIn
	cmd.Stdout = childOut

	startErr := cmd.Start()
	childIn.Close()
	childOut.Close()
	if startErr != nil {
		parentIn.Close()
		parentOut.Close()
		return nil, result.Wrap(result.SubprocessSpawnError, startErr, path)
	}

	return &execProcess{cmd: cmd, stdin: parentIn, stdout: parentOut}, nil
}

func prependPath(dir, list string) string {
	if list == "" {
		return dir
	}
	for _, p := range strings.Split(list, string(os.PathListSeparator)) {
		if p == dir {
			return list
		}
	}
	return dir + string(os.PathListSeparator) + list
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File
}

func (p *execProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *execProcess) Stdout() io.ReadCloser { return p.stdout }
func (p *execProcess) Pid() int              { return p.cmd.Process.Pid }
func (p *execProcess) Wait() error           { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
