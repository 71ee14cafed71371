package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/stateforward/go-statechart/pkg/telemetry"
)

func TestTracerFallsBackToGlobalProvider(t *testing.T) {
	tracer := telemetry.Tracer(nil)
	require.NotNil(t, tracer)
	_, span := tracer.Start(context.Background(), "test")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestMachineAttributes(t *testing.T) {
	attrs := telemetry.Machine("Traffic light SM", "id-1")
	require.Len(t, attrs, 2)
	assert.Equal(t, telemetry.MachineKey, attrs[0].Key)
	assert.Equal(t, "Traffic light SM", attrs[0].Value.AsString())
	assert.Equal(t, "id-1", attrs[1].Value.AsString())
}

func TestFail(t *testing.T) {
	_, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "test")
	telemetry.Fail(span, nil)
	telemetry.Fail(span, errors.New("boom"))
	span.End()
}
