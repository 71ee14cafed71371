package statechart

import (
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// MessageNotExistMode selects what happens when the current state does not
// handle a legal event.
type MessageNotExistMode int

const (
	// MessageNotExistDiscard drops the event silently.
	MessageNotExistDiscard MessageNotExistMode = iota
	// MessageNotExistWarn drops the event and logs a warning.
	MessageNotExistWarn
	// MessageNotExistRaise faults the machine with ErrMessageNotExist.
	MessageNotExistRaise
)

func (mode MessageNotExistMode) String() string {
	switch mode {
	case MessageNotExistDiscard:
		return "discard"
	case MessageNotExistWarn:
		return "warn"
	case MessageNotExistRaise:
		return "raise"
	}
	return fmt.Sprintf("MessageNotExistMode(%d)", int(mode))
}

func (mode MessageNotExistMode) MarshalText() ([]byte, error) {
	return []byte(mode.String()), nil
}

func (mode *MessageNotExistMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "discard":
		*mode = MessageNotExistDiscard
	case "warn":
		*mode = MessageNotExistWarn
	case "raise":
		*mode = MessageNotExistRaise
	default:
		return fmt.Errorf("invalid message not exist mode %q: must be discard, warn or raise", text)
	}
	return nil
}

// TraceLevel controls how much a machine logs about its own execution.
type TraceLevel int

const (
	TraceNone TraceLevel = iota
	TraceInfo
	// TraceDebug also re-panics faults on the drain goroutine so that a host
	// under debugging crashes at the failing event.
	TraceDebug
)

func (level TraceLevel) String() string {
	switch level {
	case TraceNone:
		return "none"
	case TraceInfo:
		return "info"
	case TraceDebug:
		return "debug"
	}
	return fmt.Sprintf("TraceLevel(%d)", int(level))
}

func (level TraceLevel) MarshalText() ([]byte, error) {
	return []byte(level.String()), nil
}

func (level *TraceLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "none":
		*level = TraceNone
	case "info":
		*level = TraceInfo
	case "debug":
		*level = TraceDebug
	default:
		return fmt.Errorf("invalid trace level %q: must be none, info or debug", text)
	}
	return nil
}

type options struct {
	name            string
	id              string
	memory          bool
	substate        bool
	msgNotExistMode MessageNotExistMode
	traceLevel      TraceLevel
	logger          *slog.Logger
	tracerProvider  trace.TracerProvider
}

func defaultOptions() options {
	return options{
		name:            "State Machine",
		memory:          true,
		msgNotExistMode: MessageNotExistDiscard,
		traceLevel:      TraceInfo,
	}
}

// Option configures a machine during construction.
type Option func(*options)

// WithName sets the display label used in logs and spans.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithID overrides the generated instance id.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithMemory sets whether a suspended machine keeps its current state.
// Without memory it resumes at its initial state.
func WithMemory(memory bool) Option {
	return func(o *options) { o.memory = memory }
}

// AsSubstate builds the machine inactive, waiting for its parent to resume it.
func AsSubstate() Option {
	return func(o *options) { o.substate = true }
}

// WithMessageNotExistMode sets the policy for legal events the current state
// does not handle. The default is MessageNotExistDiscard.
func WithMessageNotExistMode(mode MessageNotExistMode) Option {
	return func(o *options) { o.msgNotExistMode = mode }
}

// WithTraceLevel sets how much the machine logs. TraceDebug also re-panics
// faults on the processing goroutine.
func WithTraceLevel(level TraceLevel) Option {
	return func(o *options) { o.traceLevel = level }
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracerProvider sets where spans go. Nil uses the global provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = provider }
}
