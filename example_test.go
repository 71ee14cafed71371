package statechart_test

import (
	"context"
	"fmt"

	"github.com/stateforward/go-statechart"
)

func say(text string) statechart.Action[any] {
	return func(ctx statechart.Context[any], event statechart.Event) {
		fmt.Println(text)
	}
}

func Example() {
	ctx := context.Background()
	pedestrian := statechart.MustNew[any](nil, statechart.StateMap[any]{
		"standing": {
			Initial:     true,
			Entry:       []statechart.Action[any]{say("Standing")},
			Exit:        []statechart.Action[any]{say("Stopping standing")},
			Transitions: map[string][]statechart.Transition[any]{"walk": {{Target: "walking"}}},
		},
		"walking": {
			Entry:       []statechart.Action[any]{say("Walking")},
			Exit:        []statechart.Action[any]{say("Stopping walking")},
			Transitions: map[string][]statechart.Transition[any]{"stop": {{Target: "standing"}}},
		},
	}, statechart.WithName("Pedestrian SM"), statechart.AsSubstate(), statechart.WithTraceLevel(statechart.TraceNone))

	light := statechart.MustNew[any](nil, statechart.StateMap[any]{
		"green": {
			Initial:     true,
			Entry:       []statechart.Action[any]{say("Entering green state")},
			Exit:        []statechart.Action[any]{say("Exiting green state")},
			Transitions: map[string][]statechart.Transition[any]{"toYellow": {{Target: "yellow"}}},
			Substates:   []statechart.Substate{pedestrian},
		},
		"yellow": {
			Entry: []statechart.Action[any]{say("Entering yellow state")},
			Exit:  []statechart.Action[any]{say("Exiting yellow state")},
			Transitions: map[string][]statechart.Transition[any]{
				"toRed":   {{Target: "red"}},
				"toGreen": {{Target: "green"}},
			},
		},
		"red": {
			Entry:       []statechart.Action[any]{say("Entering red state")},
			Exit:        []statechart.Action[any]{say("Exiting red state")},
			Transitions: map[string][]statechart.Transition[any]{"toYellow": {{Target: "yellow"}}},
		},
	}, statechart.WithName("Traffic light SM"), statechart.WithTraceLevel(statechart.TraceNone))

	_ = pedestrian.Dispatch(ctx, "walk")
	_ = pedestrian.Wait(ctx)
	_ = light.Dispatch(ctx, "toYellow")
	_ = light.Dispatch(ctx, "toRed")
	_ = light.Wait(ctx)
	fmt.Println(light.State(), pedestrian.State(), pedestrian.Active())
	// Output:
	// Entering green state
	// Standing
	// Stopping standing
	// Walking
	// Stopping walking
	// Exiting green state
	// Entering yellow state
	// Exiting yellow state
	// Entering red state
	// red walking false
}

func ExampleMachine_Dispatch() {
	ctx := context.Background()
	sm := statechart.MustNew[any](nil, statechart.StateMap[any]{
		"A": {Initial: true, Transitions: map[string][]statechart.Transition[any]{"go": {{Target: "B"}}}},
		"B": {},
	}, statechart.WithTraceLevel(statechart.TraceNone))

	err := sm.Dispatch(ctx, "fly")
	fmt.Println(err)
	_ = sm.Dispatch(ctx, "go")
	_ = sm.Wait(ctx)
	fmt.Println(sm.State())
	// Output:
	// illegal event name: "fly"
	// B
}
