package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Task = (*Scripts)(nil)

// scriptTargets maps configured language targets to esbuild targets.
var scriptTargets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
	"esnext": api.ESNext,
}

// Scripts bundles the script entries into a single file with esbuild.
type Scripts struct {
	deps *Deps
}

// NewScripts creates the scripts task.
func NewScripts(d *Deps) *Scripts {
	return &Scripts{deps: d}
}

// Name returns "scripts", or "scripts:min" in production.
func (s *Scripts) Name() string { return s.deps.taskName("scripts", "min") }

// Run bundles every entry. Syntax and resolution errors are transform
// failures and leave the previous bundle in place.
func (s *Scripts) Run(_ context.Context, log io.Writer) ([]string, error) {
	cfg := s.deps.Config
	srcDir := cfg.SourceDir(domain.CategoryScripts)
	spec := cfg.Paths[domain.CategoryScripts]

	entries, err := s.deps.Resolver.Resolve(srcDir, spec.Entries)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		s.deps.warnEmpty(s.Name(), srcDir, spec.Entries)
		return nil, nil
	}

	result := api.Build(s.buildOptions(srcDir, entries))
	for _, msg := range formatMessages(result.Warnings, api.WarningMessage) {
		_, _ = io.WriteString(log, msg)
	}
	if len(result.Errors) > 0 {
		for _, msg := range formatMessages(result.Errors, api.ErrorMessage) {
			_, _ = io.WriteString(log, msg)
		}
		first := result.Errors[0]
		return nil, transformFailed(zerr.With(
			zerr.New("failed to bundle scripts: "+first.Text),
			"errors", len(result.Errors),
		))
	}

	var changed outputs
	for _, file := range result.OutputFiles {
		if err := changed.write(s.deps.Writer, file.Path, file.Contents); err != nil {
			return changed, err
		}
	}
	_, _ = fmt.Fprintf(log, "bundled %d entr%s into %s\n", len(entries), plural(len(entries), "y", "ies"),
		relTo(cfg.Root, filepath.Join(cfg.DestDir(domain.CategoryScripts), cfg.Scripts.Output)))
	return changed, nil
}

func (s *Scripts) buildOptions(srcDir string, entries []string) api.BuildOptions {
	cfg := s.deps.Config
	opts := api.BuildOptions{
		Bundle:        true,
		Write:         false,
		Outfile:       filepath.Join(cfg.DestDir(domain.CategoryScripts), cfg.Scripts.Output),
		AbsWorkingDir: cfg.Root,
		Target:        scriptTargets[cfg.Scripts.Target],
		Format:        api.FormatIIFE,
		LogLevel:      api.LogLevelSilent,
		Define: map[string]string{
			"process.env.NODE_ENV": strconv.Quote(s.deps.Mode.String()),
		},
	}
	if s.deps.Mode == domain.ModeProduction {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
		opts.Sourcemap = api.SourceMapNone
	} else {
		opts.Sourcemap = api.SourceMapLinked
	}

	if len(entries) == 1 {
		opts.EntryPoints = []string{filepath.Join(srcDir, filepath.FromSlash(entries[0]))}
		return opts
	}

	// Several entries become one bundle through a virtual module importing
	// each of them in order.
	var shim strings.Builder
	for _, e := range entries {
		shim.WriteString("import " + strconv.Quote("./"+e) + ";\n")
	}
	opts.Stdin = &api.StdinOptions{
		Contents:   shim.String(),
		ResolveDir: srcDir,
		Sourcefile: "entries.js",
		Loader:     api.LoaderJS,
	}
	return opts
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	return api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
}
