package assets

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Task = (*Clean)(nil)

// Clean removes the output root.
type Clean struct {
	deps *Deps
}

// NewClean creates the clean task.
func NewClean(d *Deps) *Clean {
	return &Clean{deps: d}
}

// Name returns "clean".
func (*Clean) Name() string { return "clean" }

// Run deletes the output root. A root that does not exist is not an error.
func (c *Clean) Run(_ context.Context, log io.Writer) ([]string, error) {
	dest := c.deps.Config.DestRoot()
	if err := os.RemoveAll(dest); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", dest)
	}
	_, _ = fmt.Fprintf(log, "removed %s\n", c.deps.Config.Dest)
	return nil, nil
}
