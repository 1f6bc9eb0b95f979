// Package shell provides a pty-backed executor for external asset tools.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Executor    = (*Executor)(nil)
	_ ports.ToolLocator = (*Executor)(nil)
)

// Executor implements ports.Executor using os/exec and a pseudo terminal, so
// tools keep their colored diagnostics.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs cmd and waits for it. A pty merges the tool's stdout and
// stderr; both are copied to stdout. stderr receives launch failures only.
func (e *Executor) Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error {
	if cmd == nil || len(cmd.Args) == 0 {
		return nil
	}
	if stdout == nil {
		stdout = io.Discard
	}

	name := cmd.Args[0]
	env := resolveEnvironment(os.Environ(), cmd.Dir, cmd.Environment)

	executable, err := locate(cmd, env)
	if err != nil {
		return err
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // tool commands come from the project config
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env

	ptmx, err := pty.Start(c)
	if err != nil {
		if stderr != nil {
			_, _ = io.WriteString(stderr, "failed to start "+name+": "+err.Error()+"\n")
		}
		return zerr.With(zerr.Wrap(err, "failed to start pty"), "tool", cmd.Tool)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// The pty master reports EIO once the child exits; that ends the copy.
		_, _ = io.Copy(stdout, ptmx)
	}()

	waitErr := c.Wait()
	<-ioDone
	_ = ptmx.Close()

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		failed := zerr.Wrap(errors.Join(domain.ErrToolFailed, waitErr), name+" failed")
		return zerr.With(zerr.With(failed, "tool", cmd.Tool), "exit_code", exitCode)
	}
	return nil
}

// Locate resolves the executable of cmd against the project's
// node_modules/.bin and the allow-listed PATH, as Execute does.
func (e *Executor) Locate(cmd *domain.Command) (string, error) {
	if cmd == nil || len(cmd.Args) == 0 {
		return "", domain.ErrToolNotFound
	}
	return locate(cmd, resolveEnvironment(os.Environ(), cmd.Dir, cmd.Environment))
}

func locate(cmd *domain.Command, env []string) (string, error) {
	name := cmd.Args[0]
	if filepath.IsAbs(name) {
		return name, nil
	}
	lp, err := lookPath(name, env)
	if err != nil {
		return "", zerr.With(zerr.With(domain.ErrToolNotFound, "tool", cmd.Tool), "executable", name)
	}
	return lp, nil
}

// allowListedEnvVars are the inherited variables tools may see.
var allowListedEnvVars = map[string]struct{}{
	"HOME":         {},
	"TERM":         {},
	"USER":         {},
	"PATH":         {},
	"LANG":         {},
	"TMPDIR":       {},
	"NODE_PATH":    {},
	"NODE_OPTIONS": {},
}

// resolveEnvironment filters the system environment to the allow list,
// prepends the project's node_modules/.bin to PATH and applies overrides.
func resolveEnvironment(sysEnv []string, dir string, overrides map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}

	if dir != "" {
		bin := filepath.Join(dir, "node_modules", ".bin")
		if info, err := os.Stat(bin); err == nil && info.IsDir() {
			if sysPath := envMap["PATH"]; sysPath != "" {
				envMap["PATH"] = bin + string(os.PathListSeparator) + sysPath
			} else {
				envMap["PATH"] = bin
			}
		}
	}

	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches the PATH of env rather than the current process.
func lookPath(file string, env []string) (string, error) {
	if strings.ContainsRune(file, filepath.Separator) {
		if err := findExecutable(file); err != nil {
			return "", err
		}
		return file, nil
	}

	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
