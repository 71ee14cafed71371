// Package tests holds helpers shared by the machine tests.
package tests

import (
	"slices"
	"sync"
)

// Recorder collects the names of executed behaviors in order. Actions run on
// the machine's drain goroutine while tests read from their own, so access is
// locked.
type Recorder struct {
	mutex sync.Mutex
	steps []string
}

func (r *Recorder) Record(step string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.steps = append(r.steps, step)
}

func (r *Recorder) Steps() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return slices.Clone(r.steps)
}

func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.steps = nil
}

// Count returns how many times step was recorded.
func (r *Recorder) Count(step string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	n := 0
	for _, s := range r.steps {
		if s == step {
			n++
		}
	}
	return n
}
