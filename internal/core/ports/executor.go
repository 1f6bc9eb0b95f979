package ports

import (
	"context"
	"io"

	"go.trai.ch/lander/internal/core/domain"
)

// Executor runs external tool commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd to completion, streaming its output to stdout and stderr.
	Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error
}

// ToolLocator is implemented by executors that can resolve a command's
// executable without running it.
type ToolLocator interface {
	// Locate returns the path Execute would start for cmd, or
	// domain.ErrToolNotFound.
	Locate(cmd *domain.Command) (string, error)
}
