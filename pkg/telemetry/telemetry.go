// Package telemetry wires machines to OpenTelemetry tracing.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const ScopeName = "github.com/stateforward/go-statechart"

const (
	MachineKey        = attribute.Key("statechart.machine")
	MachineIDKey      = attribute.Key("statechart.machine.id")
	EventKey          = attribute.Key("statechart.event")
	SourceKey         = attribute.Key("statechart.source")
	TargetKey         = attribute.Key("statechart.target")
	TransitionKindKey = attribute.Key("statechart.transition.kind")
)

// Tracer returns the machine tracer from provider. A nil provider falls back
// to the global one, which does nothing until the host installs an SDK.
func Tracer(provider trace.TracerProvider) trace.Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return provider.Tracer(ScopeName)
}

func Machine(name, id string) []attribute.KeyValue {
	return []attribute.KeyValue{MachineKey.String(name), MachineIDKey.String(id)}
}

// Fail marks span as failed with err. A nil err leaves the span untouched.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
