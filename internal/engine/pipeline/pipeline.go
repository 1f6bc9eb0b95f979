// Package pipeline declares the develop, build and clean pipelines as
// ordered phases of step trees over the asset tasks.
package pipeline

import (
	"go.trai.ch/lander/internal/adapters/assets"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
)

// Phase is a step tree run while the pipeline is in State.
type Phase struct {
	State domain.PipelineState
	Step  domain.Step
}

// Pipeline is a named list of phases and the tasks they reference.
type Pipeline struct {
	Name   string
	Phases []Phase
	Tasks  []ports.Task
	// Final is entered after the last phase. It is empty for pipelines that
	// only end on cancellation.
	Final domain.PipelineState
}

// Step returns the whole pipeline as a single step tree.
func (p *Pipeline) Step() domain.Step {
	steps := make([]domain.Step, 0, len(p.Phases))
	for _, phase := range p.Phases {
		steps = append(steps, phase.Step)
	}
	if len(steps) == 1 {
		return steps[0]
	}
	return domain.Sequence(steps...)
}

func names(tasks ...ports.Task) []domain.Step {
	steps := make([]domain.Step, 0, len(tasks))
	for _, t := range tasks {
		steps = append(steps, domain.Single(t.Name()))
	}
	return steps
}

// Develop returns series(clean, parallel(markup, styles, scripts, copy), serve, watch).
// deps must be in development mode.
func Develop(deps *assets.Deps, serve, watch ports.Task) *Pipeline {
	clean := assets.NewClean(deps)
	build := []ports.Task{
		assets.NewMarkup(deps),
		assets.NewStyles(deps),
		assets.NewScripts(deps),
		assets.NewCopy(deps),
	}
	return &Pipeline{
		Name: "develop",
		Phases: []Phase{
			{State: domain.StateCleaning, Step: domain.Single(clean.Name())},
			{State: domain.StateBuilding, Step: domain.Parallel(names(build...)...)},
			{State: domain.StateServing, Step: domain.Single(serve.Name())},
			{State: domain.StateWatching, Step: domain.Single(watch.Name())},
		},
		Tasks: append([]ports.Task{clean, serve, watch}, build...),
	}
}

// Production returns series(clean, parallel(markup:min, styles:min,
// scripts:min, copy:prod, images, icons), parallel(webp, sprite)).
// deps must be in production mode.
func Production(deps *assets.Deps) *Pipeline {
	clean := assets.NewClean(deps)
	build := []ports.Task{
		assets.NewMarkup(deps),
		assets.NewStyles(deps),
		assets.NewScripts(deps),
		assets.NewCopy(deps),
		assets.NewImages(deps),
		assets.NewIcons(deps),
	}
	post := []ports.Task{
		assets.NewWebp(deps),
		assets.NewSprite(deps),
	}
	tasks := append([]ports.Task{clean}, build...)
	return &Pipeline{
		Name: "build",
		Phases: []Phase{
			{State: domain.StateCleaning, Step: domain.Single(clean.Name())},
			{State: domain.StateBuilding, Step: domain.Parallel(names(build...)...)},
			{State: domain.StatePostprocessing, Step: domain.Parallel(names(post...)...)},
		},
		Tasks: append(tasks, post...),
		Final: domain.StateDone,
	}
}

// Clean returns the pipeline that only removes the output root.
func Clean(deps *assets.Deps) *Pipeline {
	clean := assets.NewClean(deps)
	return &Pipeline{
		Name:   "clean",
		Phases: []Phase{{State: domain.StateCleaning, Step: domain.Single(clean.Name())}},
		Tasks:  []ports.Task{clean},
		Final:  domain.StateDone,
	}
}

// WatchRules maps source categories to the development task that rebuilds them.
func WatchRules(cfg *domain.Config) []domain.WatchRule {
	var copyGlobs []string
	for _, cat := range []domain.Category{domain.CategoryFonts, domain.CategoryImages, domain.CategoryIcons} {
		copyGlobs = append(copyGlobs, cfg.Paths[cat].SourcePatterns()...)
	}
	return []domain.WatchRule{
		{Name: "markup", Globs: cfg.Paths[domain.CategoryMarkup].SourcePatterns(), Step: domain.Single("markup")},
		{Name: "styles", Globs: cfg.Paths[domain.CategoryStyles].SourcePatterns(), Step: domain.Single("styles")},
		{Name: "scripts", Globs: cfg.Paths[domain.CategoryScripts].SourcePatterns(), Step: domain.Single("scripts")},
		{Name: "copy", Globs: copyGlobs, Step: domain.Single("copy")},
	}
}
