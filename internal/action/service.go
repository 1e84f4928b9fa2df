package action

import (
	"context"

	"tvremote/internal/platform"
	"tvremote/internal/remote"
)

// ServiceAction calls a remote service on another entity, such as an
// infrared blaster that can send the power code
type ServiceAction struct {
	Registry *platform.Registry
	Call     remote.ServiceCall
}

// Run performs the call in a child of the caller's context
func (s *ServiceAction) Run(ctx context.Context, callCtx platform.Context) error {
	call := s.Call
	call.Context = callCtx.Child()
	return remote.Call(ctx, s.Registry, call)
}
