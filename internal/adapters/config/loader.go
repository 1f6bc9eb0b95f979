// Package config provides the configuration loader for lander.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only configuration schema version understood by the loader.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration at path, applies it over the defaults and
// validates the result. A missing file yields the defaults.
func (l *Loader) Load(path string) (*domain.Config, error) {
	if path == "" {
		path = domain.DefaultConfigFile
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	cfg := domain.DefaultConfig(filepath.Dir(absPath))

	// #nosec G304 -- the path is chosen by the user on the command line
	data, err := os.ReadFile(absPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.Logger.Info("no " + filepath.Base(absPath) + " found, using defaults")
	case err != nil:
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", absPath)
	default:
		file, parseErr := parse(data)
		if parseErr != nil {
			return nil, zerr.With(parseErr, "path", absPath)
		}
		if applyErr := apply(cfg, file); applyErr != nil {
			return nil, zerr.With(applyErr, "path", absPath)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) (*Landerfile, error) {
	var file Landerfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if file.Version != "" && file.Version != SupportedVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported version "+file.Version), "version", file.Version)
	}
	return &file, nil
}

//nolint:cyclop // flat field-by-field override
func apply(cfg *domain.Config, f *Landerfile) error {
	if f.Src != "" {
		cfg.Src = f.Src
	}
	if f.Dest != "" {
		cfg.Dest = f.Dest
	}
	if f.Parallelism != 0 {
		cfg.Parallelism = f.Parallelism
	}
	if s := f.Server; s != nil {
		if s.Host != "" {
			cfg.Server.Host = s.Host
		}
		setIfPresent(&cfg.Server.Port, s.Port)
		setIfPresent(&cfg.Server.CORS, s.CORS)
		setIfPresent(&cfg.Server.Reload, s.Reload)
	}
	if s := f.Styles; s != nil {
		setCommand(&cfg.Styles.Compiler, s.Compiler)
		setCommand(&cfg.Styles.Postprocess, s.Postprocess)
		setString(&cfg.Styles.Output, s.Output)
	}
	if s := f.Scripts; s != nil {
		setString(&cfg.Scripts.Output, s.Output)
		setString(&cfg.Scripts.Target, s.Target)
	}
	if s := f.Images; s != nil {
		setIfPresent(&cfg.Images.PNGLevel, s.PNGLevel)
		setCommand(&cfg.Images.PNG, s.PNG)
		setCommand(&cfg.Images.JPEG, s.JPEG)
	}
	if s := f.Webp; s != nil {
		setIfPresent(&cfg.Webp.Quality, s.Quality)
		setCommand(&cfg.Webp.Encoder, s.Encoder)
		setCommand(&cfg.Webp.Globs, s.Src)
	}
	if s := f.Sprite; s != nil {
		setString(&cfg.Sprite.Output, s.Output)
		setCommand(&cfg.Sprite.Globs, s.Src)
	}
	return applyPaths(cfg.Paths, f.Paths)
}

func applyPaths(paths domain.PathSet, overrides map[string]*PathSetDTO) error {
	for name, dto := range overrides {
		cat := domain.Category(name)
		spec, ok := paths[cat]
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unknown path category"), "category", name)
		}
		if dto == nil {
			continue
		}
		setIfPresent(&spec.Dir, dto.Dir)
		setIfPresent(&spec.Dest, dto.Dest)
		setCommand(&spec.Globs, dto.Src)
		setCommand(&spec.Entries, dto.Entries)
		paths[cat] = spec
	}
	return nil
}

func validate(cfg *domain.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, cat := range domain.Categories() {
		spec := cfg.Paths[cat]
		if err := validateGlobs(string(cat), slices.Concat(spec.Globs, spec.Entries)); err != nil {
			return err
		}
	}
	if err := validateGlobs("webp", cfg.Webp.Globs); err != nil {
		return err
	}
	return validateGlobs("sprite", cfg.Sprite.Globs)
}

func validateGlobs(owner string, globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return zerr.With(zerr.With(domain.ErrInvalidGlob, "pattern", g), "category", owner)
		}
	}
	return nil
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func setCommand(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = slices.Clone(src)
	}
}
