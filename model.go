package statechart

import (
	"context"
	"fmt"
	"slices"

	"github.com/stateforward/go-statechart/embedded"
	"github.com/stateforward/go-statechart/kinds"
	"github.com/stateforward/go-statechart/pkg/set"
)

// Substate is a child machine owned by a state. The owning machine suspends
// and resumes it; events are never routed to it by the owner.
type Substate = embedded.Instance

// Event is the event being processed. The zero Event carries no event context:
// behaviors run by the initial entry, Suspend and Resume receive it.
type Event struct {
	Name string
	Args []any
}

// Context is passed to every action and guard. It embeds the machine, so
// behaviors can read ctx.Obj, call ctx.State() or ctx.Dispatch follow-up events.
type Context[T any] struct {
	context.Context
	*Machine[T]
}

// Action is an entry, exit or transition behavior.
type Action[T any] func(ctx Context[T], event Event)

// Guard decides whether a transition may fire.
type Guard[T any] func(ctx Context[T], event Event) bool

// Transition fires when all of its guards pass. An empty Target makes it an
// internal transition: only its actions run.
type Transition[T any] struct {
	Guards  []Guard[T]
	Actions []Action[T]
	Target  string
}

func (transition *Transition[T]) kind() uint64 {
	if transition.Target == "" {
		return kinds.Internal
	}
	return kinds.External
}

// State describes one state: its behaviors, the transitions it handles
// keyed by event name, and the child machines it owns.
type State[T any] struct {
	Initial     bool
	Entry       []Action[T]
	Exit        []Action[T]
	Transitions map[string][]Transition[T]
	Substates   []Substate
}

// StateMap maps state names to their descriptors. New validates and
// normalizes it in place; the machine owns it afterwards.
type StateMap[T any] map[string]*State[T]

// machine is implemented by every *Machine regardless of its context type.
type machine interface {
	embedded.Instance
	built() bool
}

// validate normalizes states and returns the name of the initial state.
func validate[T any](states StateMap[T]) (string, error) {
	if states == nil {
		return "", ErrMissingStateMap
	}
	initial := []string{}
	for name, state := range states {
		if state == nil {
			state = &State[T]{}
			states[name] = state
		}
		if state.Initial {
			initial = append(initial, name)
		}
		if state.Transitions == nil {
			state.Transitions = map[string][]Transition[T]{}
		}
		if state.Substates == nil {
			state.Substates = []Substate{}
		}
		for i, substate := range state.Substates {
			if sub, ok := substate.(machine); !ok || !sub.built() {
				return "", fmt.Errorf("%w: state %q substate %d is %T", ErrInvalidSubstateType, name, i, substate)
			}
		}
	}
	slices.Sort(initial)
	switch len(initial) {
	case 0:
		return "", fmt.Errorf("%w: states %v", ErrInitialStateNotFoundInMap, set.Sorted(names(states)))
	case 1:
		return initial[0], nil
	default:
		return "", fmt.Errorf("%w: %v", ErrMultipleInitialStates, initial)
	}
}

func names[T any](states StateMap[T]) set.Set[string] {
	result := set.New[string]()
	for name := range states {
		result.Add(name)
	}
	return result
}

// events derives the legal event names: every event any state handles.
func events[T any](states StateMap[T]) set.Set[string] {
	result := set.New[string]()
	for _, state := range states {
		for name := range state.Transitions {
			result.Add(name)
		}
	}
	return result
}
