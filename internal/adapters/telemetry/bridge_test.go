package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/lander/internal/adapters/telemetry"
	"go.trai.ch/lander/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_ReportsLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	tracer := tp.Tracer("test")

	var parentID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "build", gomock.Any()).
			Do(func(spanID, _, _ string, _ any) { parentID = spanID }),
		renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "styles", gomock.Any()).
			Do(func(_, parent, _ string, _ any) { assert.Equal(t, parentID, parent) }),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)

	ctx, root := tracer.Start(context.Background(), "build")
	_, child := tracer.Start(ctx, "styles")
	child.End()
	root.End()
}

func TestBridge_ErrorStatus(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{name: "with description", description: "sass exited 1", want: "sass exited 1"},
		{name: "without description", description: "", want: "task failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			renderer := mocks.NewMockRenderer(ctrl)

			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
			defer func() { _ = tp.Shutdown(context.Background()) }()

			renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
			renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
				Do(func(_ string, _ any, err error) {
					require.Error(t, err)
					assert.Equal(t, tt.want, err.Error())
				})

			_, span := tp.Tracer("test").Start(context.Background(), "styles")
			span.RecordError(errors.New("boom"))
			span.SetStatus(codes.Error, tt.description)
			span.End()
		})
	}
}

func TestBridge_NilRenderer(t *testing.T) {
	bridge := telemetry.NewBridge(nil)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()

	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}
