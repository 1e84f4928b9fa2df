package platform

import "context"

// Action is a user-configured routine, such as the one that turns a device on
type Action interface {
	Run(ctx context.Context, callCtx Context) error
}

// ActionFunc adapts a function to Action
type ActionFunc func(ctx context.Context, callCtx Context) error

// Run calls f
func (f ActionFunc) Run(ctx context.Context, callCtx Context) error {
	return f(ctx, callCtx)
}
