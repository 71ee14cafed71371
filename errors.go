package statechart

import "errors"

// Sentinel errors for every failure a machine reports. Returned errors wrap
// one of these with detail and can be matched with errors.Is.
var (
	// ErrMissingStateMap is returned by New when no state map is given.
	ErrMissingStateMap = errors.New("missing state map")
	// ErrInitialStateNotFoundInMap is returned by New when no state is marked initial.
	ErrInitialStateNotFoundInMap = errors.New("initial state not found in map")
	// ErrMultipleInitialStates is returned by New when more than one state is marked initial.
	ErrMultipleInitialStates = errors.New("multiple initial states")
	// ErrInvalidSubstateType is returned by New when a substate is not a machine.
	ErrInvalidSubstateType = errors.New("invalid substate type")
	// ErrStateNotExist is recorded when a transition targets a state missing from the map.
	ErrStateNotExist = errors.New("state does not exist")
	// ErrIllegalEventName is returned by Dispatch for names no state handles.
	ErrIllegalEventName = errors.New("illegal event name")
	// ErrMessageNotExist is recorded when the current state does not handle an
	// event and the machine runs with MessageNotExistRaise.
	ErrMessageNotExist = errors.New("message does not exist in current state")
	// ErrCannotDetermineValidAction is recorded when more than one guarded
	// transition passes for the same event.
	ErrCannotDetermineValidAction = errors.New("cannot determine valid action")
	// ErrActionTypeInvalid is recorded when an action or guard slot holds no function.
	ErrActionTypeInvalid = errors.New("action type invalid")
	// ErrStateMachineIsBlown is reported by Fault once a machine has recorded a fault.
	ErrStateMachineIsBlown = errors.New("state machine is blown")
)
