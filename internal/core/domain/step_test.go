package domain_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/core/domain"
)

func TestStep_String(t *testing.T) {
	step := domain.Sequence(
		domain.Single("clean"),
		domain.Parallel(domain.Single("markup"), domain.Single("styles")),
		domain.Single("serve"),
	)

	assert.Equal(t, "series(clean, parallel(markup, styles), serve)", step.String())
}

func TestTasks(t *testing.T) {
	step := domain.Sequence(
		domain.Single("clean"),
		domain.Parallel(domain.Single("a"), domain.Sequence(domain.Single("b"), domain.Single("c"))),
		domain.Single("a"),
	)

	assert.Equal(t, []string{"clean", "a", "b", "c", "a"}, slices.Collect(domain.Tasks(step)))
}

func TestTasks_StopsEarly(t *testing.T) {
	step := domain.Parallel(domain.Single("a"), domain.Single("b"), domain.Single("c"))

	var seen []string
	for name := range domain.Tasks(step) {
		seen = append(seen, name)
		if name == "b" {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestValidateStep(t *testing.T) {
	registered := map[string]bool{"clean": true, "markup": true}
	exists := func(name string) bool { return registered[name] }

	tests := []struct {
		name        string
		step        domain.Step
		errContains string
	}{
		{
			name: "valid tree",
			step: domain.Sequence(domain.Single("clean"), domain.Parallel(domain.Single("markup"))),
		},
		{
			name:        "unknown task",
			step:        domain.Sequence(domain.Single("clean"), domain.Single("sprite")),
			errContains: domain.ErrTaskNotFound.Error(),
		},
		{
			name:        "empty sequence",
			step:        domain.Sequence(),
			errContains: domain.ErrEmptyStep.Error(),
		},
		{
			name:        "empty nested parallel",
			step:        domain.Sequence(domain.Single("clean"), domain.Parallel()),
			errContains: domain.ErrEmptyStep.Error(),
		},
		{
			name:        "nil step",
			step:        nil,
			errContains: domain.ErrEmptyStep.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateStep(tt.step, exists)
			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}
