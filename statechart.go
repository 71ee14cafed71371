// Package statechart runs hierarchical state machines described by a
// declarative StateMap.
//
// Each machine tracks one current state, accepts named events and resolves
// them against guarded transitions. A transition with a target runs the exit
// actions of the current state, then its own actions, then the entry actions
// of the target. A state may own child machines (substates); they are
// suspended when their owner leaves the state and resumed when it enters it.
//
//	pedestrian, _ := statechart.New(obj, statechart.StateMap[*Obj]{
//	    "standing": {Initial: true, Transitions: map[string][]statechart.Transition[*Obj]{
//	        "walk": {{Target: "walking"}},
//	    }},
//	    "walking": {Transitions: map[string][]statechart.Transition[*Obj]{
//	        "stop": {{Target: "standing"}},
//	    }},
//	}, statechart.AsSubstate())
//
// Events are processed asynchronously, one at a time, in dispatch order.
// Dispatch only rejects names that no state handles; every other failure is
// recorded as the machine's fault, after which it ignores all events.
package statechart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stateforward/go-statechart/kinds"
	"github.com/stateforward/go-statechart/pkg/set"
	"github.com/stateforward/go-statechart/pkg/telemetry"
	"github.com/stateforward/go-statechart/queue"
)

// EventFunc dispatches one event name with the given arguments.
type EventFunc func(ctx context.Context, args ...any)

// Machine is a running state machine bound to a context object of type T.
type Machine[T any] struct {
	// Obj is the caller's context object, reachable from every behavior.
	Obj T

	name            string
	id              string
	states          StateMap[T]
	initial         string
	events          set.Set[string]
	memory          bool
	msgNotExistMode MessageNotExistMode
	traceLevel      TraceLevel
	logger          *slog.Logger
	tracer          trace.Tracer

	state  atomic.Value
	active atomic.Bool
	fault  atomic.Pointer[error]

	// processing serializes event processing with Suspend and Resume. The
	// goroutine holding it records that in its context, see acquire.
	processing sync.Mutex
	queue      *queue.Queue[func()]
	draining   atomic.Bool
}

// New validates states and builds a machine bound to obj. A root machine
// enters its initial state before New returns; a substate (AsSubstate) stays
// inactive until its owner resumes it.
func New[T any](obj T, states StateMap[T], maybeOptions ...Option) (*Machine[T], error) {
	options := defaultOptions()
	for _, option := range maybeOptions {
		option(&options)
	}
	initial, err := validate(states)
	if err != nil {
		return nil, err
	}
	if options.id == "" {
		options.id = newID()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	sm := &Machine[T]{
		Obj:             obj,
		name:            options.name,
		id:              options.id,
		states:          states,
		initial:         initial,
		events:          events(states),
		memory:          options.memory,
		msgNotExistMode: options.msgNotExistMode,
		traceLevel:      options.traceLevel,
		logger:          options.logger.With(slog.String("machine", options.name), slog.String("machine_id", options.id)),
		tracer:          telemetry.Tracer(options.tracerProvider),
		queue:           queue.New[func()](),
	}
	sm.state.Store(initial)
	ctx := context.Background()
	sm.info(ctx, "recognized events", slog.Any("events", set.Sorted(sm.events)))
	if options.substate {
		return sm, nil
	}
	sm.active.Store(true)
	ctx, release := sm.acquire(ctx)
	defer release()
	err = sm.safely(func() error {
		state := sm.states[initial]
		if err := sm.perform(ctx, kinds.Entry, state.Entry, Event{}); err != nil {
			return err
		}
		return sm.resumeSubstates(ctx, state)
	})
	if err != nil {
		sm.fail(err)
		return nil, err
	}
	return sm, nil
}

// MustNew is like New but panics if the state map is invalid.
func MustNew[T any](obj T, states StateMap[T], maybeOptions ...Option) *Machine[T] {
	sm, err := New(obj, states, maybeOptions...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return sm
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (sm *Machine[T]) built() bool {
	return sm != nil && sm.states != nil
}

func (sm *Machine[T]) Name() string {
	return sm.name
}

func (sm *Machine[T]) ID() string {
	return sm.id
}

// State returns the current state name. It does not block, so behaviors may
// call it while their machine is processing.
func (sm *Machine[T]) State() string {
	state, _ := sm.state.Load().(string)
	return state
}

// Active reports whether the machine is accepting events.
func (sm *Machine[T]) Active() bool {
	return sm.active.Load()
}

// Fault returns nil while the machine is healthy. Once it has failed, the
// returned error matches both ErrStateMachineIsBlown and the original cause.
func (sm *Machine[T]) Fault() error {
	if fault := sm.fault.Load(); fault != nil {
		return fmt.Errorf("%w: %w", ErrStateMachineIsBlown, *fault)
	}
	return nil
}

// Events returns the legal event names in ascending order.
func (sm *Machine[T]) Events() []string {
	return set.Sorted(sm.events)
}

// Dispatch queues an event for processing and returns without waiting for it.
// Names that no state handles fail immediately with ErrIllegalEventName.
func (sm *Machine[T]) Dispatch(ctx context.Context, name string, args ...any) error {
	if !sm.events.Contains(name) {
		return fmt.Errorf("%w: %q", ErrIllegalEventName, name)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = detach(context.WithoutCancel(ctx))
	event := Event{Name: name, Args: args}
	sm.schedule(func() {
		sm.run(ctx, event)
	})
	return nil
}

// Handler returns the dispatch function for one event name.
func (sm *Machine[T]) Handler(name string) (EventFunc, error) {
	if !sm.events.Contains(name) {
		return nil, fmt.Errorf("%w: %q", ErrIllegalEventName, name)
	}
	return func(ctx context.Context, args ...any) {
		_ = sm.Dispatch(ctx, name, args...)
	}, nil
}

// Wait blocks until every event dispatched before the call has been processed.
// Behaviors must not Wait on their own machine.
func (sm *Machine[T]) Wait(ctx context.Context) error {
	done := make(chan struct{})
	sm.schedule(func() {
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Suspend exits the machine: substates of the current state are suspended
// first, then the current state's exit actions run. Without memory the
// machine falls back to its initial state. Called from outside, Suspend waits
// for the event being processed. Called from a behavior with the behavior's
// context, it runs in place, so a behavior may suspend its own machine or any
// machine above it in the tree.
func (sm *Machine[T]) Suspend(ctx context.Context) error {
	ctx, release := sm.acquire(ctx)
	defer release()
	return sm.lifecycle(ctx, kinds.Suspend, sm.suspend)
}

// Resume enters the machine at its remembered or initial state and resumes
// that state's substates. It follows the same locking rules as Suspend.
func (sm *Machine[T]) Resume(ctx context.Context) error {
	ctx, release := sm.acquire(ctx)
	defer release()
	return sm.lifecycle(ctx, kinds.Resume, sm.resume)
}

// holder is one link of the chain of machines whose processing lock the
// current call stack holds.
type holder struct {
	owner any
	next  *holder
}

type holderKey struct{}

// acquire locks sm for processing unless ctx shows that this call stack
// already holds it. The returned context records the lock for nested calls.
func (sm *Machine[T]) acquire(ctx context.Context) (context.Context, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	chain, _ := ctx.Value(holderKey{}).(*holder)
	for link := chain; link != nil; link = link.next {
		if link.owner == any(sm) {
			return ctx, func() {}
		}
	}
	sm.processing.Lock()
	return context.WithValue(ctx, holderKey{}, &holder{owner: sm, next: chain}), sm.processing.Unlock
}

// detach drops the held locks from a context that leaves the current call
// stack, such as one queued with an event.
func detach(ctx context.Context) context.Context {
	if ctx.Value(holderKey{}) == nil {
		return ctx
	}
	return context.WithValue(ctx, holderKey{}, (*holder)(nil))
}

func (sm *Machine[T]) lifecycle(ctx context.Context, kind uint64, fn func(ctx context.Context) error) error {
	ctx, span := sm.tracer.Start(ctx, "statechart."+kinds.Name(kind), trace.WithAttributes(
		append(telemetry.Machine(sm.name, sm.id), telemetry.SourceKey.String(sm.State()))...,
	))
	defer span.End()
	err := sm.safely(func() error {
		return fn(ctx)
	})
	if err != nil {
		sm.fail(err)
		telemetry.Fail(span, err)
	}
	return err
}

func (sm *Machine[T]) suspend(ctx context.Context) error {
	state, err := sm.lookup(sm.State())
	if err != nil {
		return err
	}
	if err := sm.suspendSubstates(ctx, state); err != nil {
		return err
	}
	if err := sm.perform(ctx, kinds.Exit, state.Exit, Event{}); err != nil {
		return err
	}
	if !sm.memory {
		sm.state.Store(sm.initial)
	}
	sm.active.Store(false)
	sm.info(ctx, "suspended", slog.String("state", sm.State()))
	return nil
}

func (sm *Machine[T]) resume(ctx context.Context) error {
	state, err := sm.lookup(sm.State())
	if err != nil {
		return err
	}
	if err := sm.perform(ctx, kinds.Entry, state.Entry, Event{}); err != nil {
		return err
	}
	if err := sm.resumeSubstates(ctx, state); err != nil {
		return err
	}
	sm.active.Store(true)
	sm.info(ctx, "resumed", slog.String("state", sm.State()))
	return nil
}

func (sm *Machine[T]) suspendSubstates(ctx context.Context, state *State[T]) error {
	for _, substate := range state.Substates {
		if err := substate.Suspend(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (sm *Machine[T]) resumeSubstates(ctx context.Context, state *State[T]) error {
	for _, substate := range state.Substates {
		if err := substate.Resume(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (sm *Machine[T]) schedule(task func()) {
	sm.queue.Push(task)
	if sm.draining.CompareAndSwap(false, true) {
		go sm.drain()
	}
}

// drain runs queued tasks until the queue is empty. A push that lands after
// the last pop but before draining is cleared is picked up by the re-check.
func (sm *Machine[T]) drain() {
	for {
		for task, ok := sm.queue.Pop(); ok; task, ok = sm.queue.Pop() {
			task()
		}
		sm.draining.Store(false)
		if sm.queue.Len() == 0 || !sm.draining.CompareAndSwap(false, true) {
			return
		}
	}
}

func (sm *Machine[T]) run(ctx context.Context, event Event) {
	ctx, release := sm.acquire(ctx)
	defer release()
	if sm.fault.Load() != nil {
		sm.debug(ctx, "ignoring event for blown state machine", slog.String("event", event.Name))
		return
	}
	if !sm.active.Load() {
		sm.info(ctx, "received event for suspended state machine, ignoring", slog.String("event", event.Name))
		return
	}
	ctx, span := sm.tracer.Start(ctx, "statechart.process", trace.WithAttributes(
		append(telemetry.Machine(sm.name, sm.id), telemetry.EventKey.String(event.Name))...,
	))
	defer span.End()
	err := sm.safely(func() error {
		return sm.process(ctx, event)
	})
	if err == nil {
		return
	}
	sm.fail(err)
	telemetry.Fail(span, err)
	sm.logger.WarnContext(ctx, "event handler failed", slog.String("event", event.Name), slog.Any("error", err))
	if sm.traceLevel >= TraceDebug {
		panic(err)
	}
}

func (sm *Machine[T]) process(ctx context.Context, event Event) error {
	current := sm.State()
	sm.info(ctx, "processing event", slog.String("state", current), slog.String("event", event.Name))
	sm.debug(ctx, "event arguments", slog.String("event", event.Name), slog.Any("args", event.Args))
	source, err := sm.lookup(current)
	if err != nil {
		return err
	}
	candidates, ok := source.Transitions[event.Name]
	if !ok {
		return sm.messageNotExist(ctx, event)
	}
	transition, err := sm.resolve(ctx, candidates, event)
	if err != nil {
		return err
	}
	if transition == nil {
		sm.info(ctx, "no valid transition found", slog.String("event", event.Name))
		return nil
	}
	trace.SpanFromContext(ctx).SetAttributes(
		telemetry.SourceKey.String(current),
		telemetry.TargetKey.String(transition.Target),
		telemetry.TransitionKindKey.String(kinds.Name(transition.kind())),
	)
	return sm.transition(ctx, source, transition, event)
}

func (sm *Machine[T]) messageNotExist(ctx context.Context, event Event) error {
	switch sm.msgNotExistMode {
	case MessageNotExistWarn:
		sm.logger.WarnContext(ctx, "event does not exist in current state", slog.String("event", event.Name), slog.String("state", sm.State()))
	case MessageNotExistRaise:
		return fmt.Errorf("%w: %s, %q", ErrMessageNotExist, sm.name, event.Name)
	}
	return nil
}

// resolve returns the one transition whose guards all pass, or nil when none
// does. More than one passing transition faults the machine.
func (sm *Machine[T]) resolve(ctx context.Context, candidates []Transition[T], event Event) (*Transition[T], error) {
	var enabled []*Transition[T]
	for i := range candidates {
		passed, err := sm.evaluate(ctx, candidates[i].Guards, event)
		if err != nil {
			return nil, err
		}
		if passed {
			enabled = append(enabled, &candidates[i])
		}
	}
	switch len(enabled) {
	case 0:
		return nil, nil
	case 1:
		return enabled[0], nil
	}
	err := fmt.Errorf("%w: %d transitions for %q passed their guards in state %q", ErrCannotDetermineValidAction, len(enabled), event.Name, sm.State())
	sm.fail(err)
	return nil, err
}

func (sm *Machine[T]) evaluate(ctx context.Context, guards []Guard[T], event Event) (bool, error) {
	passed := true
	for i, guard := range guards {
		if guard == nil {
			err := fmt.Errorf("%w: %s %d for %q is nil", ErrActionTypeInvalid, kinds.Name(kinds.Guard), i, event.Name)
			sm.fail(err)
			return false, err
		}
		if !guard(Context[T]{Context: ctx, Machine: sm}, event) {
			passed = false
			break
		}
	}
	sm.debug(ctx, "guards evaluated", slog.String("event", event.Name), slog.Bool("passed", passed))
	return passed, nil
}

func (sm *Machine[T]) perform(ctx context.Context, kind uint64, actions []Action[T], event Event) error {
	if len(actions) == 0 {
		return nil
	}
	sm.debug(ctx, "calling actions", slog.String("phase", kinds.Name(kind)), slog.String("event", event.Name))
	for i, action := range actions {
		if action == nil {
			err := fmt.Errorf("%w: %s action %d is nil", ErrActionTypeInvalid, kinds.Name(kind), i)
			sm.fail(err)
			return err
		}
		action(Context[T]{Context: ctx, Machine: sm}, event)
	}
	return nil
}

// transition runs a resolved transition. The target is checked before any
// behavior runs so that a bad target leaves no partial side effects.
func (sm *Machine[T]) transition(ctx context.Context, source *State[T], transition *Transition[T], event Event) error {
	if kinds.IsKind(transition.kind(), kinds.Internal) {
		return sm.perform(ctx, kinds.Effect, transition.Actions, event)
	}
	target, err := sm.lookup(transition.Target)
	if err != nil {
		sm.fail(err)
		return err
	}
	if err := sm.suspendSubstates(ctx, source); err != nil {
		return err
	}
	if err := sm.perform(ctx, kinds.Exit, source.Exit, event); err != nil {
		return err
	}
	if err := sm.perform(ctx, kinds.Effect, transition.Actions, event); err != nil {
		return err
	}
	sm.state.Store(transition.Target)
	sm.info(ctx, "state is now set", slog.String("state", transition.Target))
	if err := sm.perform(ctx, kinds.Entry, target.Entry, event); err != nil {
		return err
	}
	return sm.resumeSubstates(ctx, target)
}

func (sm *Machine[T]) lookup(name string) (*State[T], error) {
	state, ok := sm.states[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrStateNotExist, name, sm.name)
	}
	return state, nil
}

// fail records err as the machine's fault. Only the first fault is kept.
func (sm *Machine[T]) fail(err error) {
	if err == nil {
		return
	}
	sm.fault.CompareAndSwap(nil, &err)
}

// safely turns a panic raised by caller behaviors into an error.
func (sm *Machine[T]) safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if cause, ok := r.(error); ok {
				err = fmt.Errorf("panic in %s: %w", sm.name, cause)
			} else {
				err = fmt.Errorf("panic in %s: %v", sm.name, r)
			}
		}
	}()
	return fn()
}

func (sm *Machine[T]) info(ctx context.Context, msg string, attrs ...slog.Attr) {
	if sm.traceLevel >= TraceInfo {
		sm.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
	}
}

func (sm *Machine[T]) debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if sm.traceLevel >= TraceDebug {
		sm.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
	}
}
