// Package embedded declares the surface shared by machines of any context type.
package embedded

import (
	"context"
)

// Instance is a running machine as seen from its owner. A parent state holds
// its substates as Instances so that machines bound to different context types
// can nest.
type Instance interface {
	Name() string
	ID() string
	State() string
	Active() bool
	Fault() error
	Suspend(ctx context.Context) error
	Resume(ctx context.Context) error
}
