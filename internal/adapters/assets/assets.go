// Package assets implements the asset tasks of the landing-page pipelines.
//
// Every task reads sources through the configured PathSet, writes outputs
// only when their bytes change and reports the changed output paths. A
// failing transform (a compile error, a tool exiting non-zero) is returned
// joined with domain.ErrTransformFailed so the scheduler can keep going; any
// filesystem error is returned as is and stops the pipeline.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

// Deps are the collaborators shared by all asset tasks.
type Deps struct {
	Config   *domain.Config
	Resolver ports.InputResolver
	Writer   ports.FileWriter
	Executor ports.Executor
	Logger   ports.Logger
	Mode     domain.Mode
}

// taskName appends suffix to base for the production variant.
func (d *Deps) taskName(base, suffix string) string {
	if d.Mode == domain.ModeProduction {
		return base + ":" + suffix
	}
	return base
}

// sources resolves the globs of cat against its source directory.
func (d *Deps) sources(cat domain.Category) ([]string, error) {
	return d.Resolver.Resolve(d.Config.SourceDir(cat), d.Config.Paths[cat].Globs)
}

// outputPath maps a path relative to the source directory of cat to its
// location in the output tree.
func (d *Deps) outputPath(cat domain.Category, rel string) string {
	return filepath.Join(d.Config.DestDir(cat), filepath.FromSlash(rel))
}

func (d *Deps) warnEmpty(task string, root string, patterns []string) {
	rel, err := filepath.Rel(d.Config.Root, root)
	if err != nil {
		rel = root
	}
	d.Logger.Warn(fmt.Sprintf("%s: nothing matches %s in %s", task, strings.Join(patterns, ", "), rel))
}

// readSource reads a source file. Failures are hard.
func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from resolved globs
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}
	return data, nil
}

// outputs collects the paths a task changed.
type outputs []string

func (o *outputs) write(w ports.FileWriter, path string, data []byte) error {
	changed, err := w.WriteFile(path, data)
	if err != nil {
		return err
	}
	if changed {
		*o = append(*o, path)
	}
	return nil
}

// environment is passed to every external tool.
func (d *Deps) environment() map[string]string {
	return map[string]string{"NODE_ENV": d.Mode.String()}
}

// command builds a tool invocation that runs from the project root.
func (d *Deps) command(tool string, prefix []string, args ...string) *domain.Command {
	cmd := domain.NewCommand(tool, prefix, args...)
	cmd.Dir = d.Config.Root
	cmd.Environment = d.environment()
	return cmd
}

// run executes an external tool from the project root. A non-zero exit is a
// transform failure; a missing executable is not.
func (d *Deps) run(ctx context.Context, tool string, prefix []string, log io.Writer, args ...string) error {
	cmd := d.command(tool, prefix, args...)
	if err := d.Executor.Execute(ctx, cmd, log, log); err != nil {
		if errors.Is(err, domain.ErrToolFailed) {
			return transformFailed(err)
		}
		return err
	}
	return nil
}

// transformFailed marks err as a soft asset failure.
func transformFailed(err error) error {
	return errors.Join(domain.ErrTransformFailed, err)
}

// relTo returns path relative to root in slash form, or path when that fails.
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
