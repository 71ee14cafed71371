package kinds_test

import (
	"testing"

	"github.com/stateforward/go-statechart/kinds"
)

func TestKinds(t *testing.T) {
	if !kinds.IsKind(kinds.Entry, kinds.Behavior) {
		t.Errorf("Entry should be a Behavior")
	}
	if !kinds.IsKind(kinds.Suspend, kinds.Behavior) {
		t.Errorf("Suspend should be a Behavior through Lifecycle")
	}
	if kinds.IsKind(kinds.Guard, kinds.Behavior) {
		t.Errorf("Guard should not be a Behavior")
	}
	if !kinds.IsKind(kinds.Internal, kinds.Transition) {
		t.Errorf("Internal should be a Transition")
	}
	if kinds.IsKind(kinds.Internal, kinds.External) {
		t.Errorf("Internal should not be External")
	}
	if kinds.IsKind(kinds.Effect, kinds.Lifecycle) {
		t.Errorf("Effect should not be a Lifecycle")
	}
	if !kinds.IsKind(kinds.Resume, kinds.Transition, kinds.Lifecycle) {
		t.Errorf("Resume should match one of Transition or Lifecycle")
	}
}

func TestName(t *testing.T) {
	if kinds.Name(kinds.Entry) != "entry" {
		t.Errorf("unexpected name %q", kinds.Name(kinds.Entry))
	}
	if kinds.Name(kinds.Effect) != "transition" {
		t.Errorf("unexpected name %q", kinds.Name(kinds.Effect))
	}
	if kinds.Name(kinds.Suspend) != "suspend" {
		t.Errorf("unexpected name %q", kinds.Name(kinds.Suspend))
	}
	if kinds.Name(1<<40) != "unknown" {
		t.Errorf("expected unknown for unregistered kind")
	}
}
