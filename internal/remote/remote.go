package remote

import (
	"context"
	"errors"
	"fmt"

	"tvremote/internal/platform"
)

// Domain is the platform domain of remote entities
const Domain = "remote"

// DefaultNumRepeats is used when a send_command call does not set num_repeats
const DefaultNumRepeats = 1

// ErrInvalidCall is wrapped by errors for calls that do not match the
// service schema
var ErrInvalidCall = errors.New("invalid service call")

// Service names
type Service string

const (
	ServiceTurnOn      Service = "turn_on"
	ServiceTurnOff     Service = "turn_off"
	ServiceSendCommand Service = "send_command"
)

// Services lists every service a remote entity answers
var Services = []Service{ServiceTurnOn, ServiceTurnOff, ServiceSendCommand}

// Entity is a remote-control entity
type Entity interface {
	platform.Entity

	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	SendCommand(ctx context.Context, commands []string, numRepeats int) error
}

// ServiceCall is one invocation of a remote service
type ServiceCall struct {
	Service    Service          `json:"service"`
	EntityID   string           `json:"entity_id"`
	Command    []string         `json:"command,omitempty"`
	NumRepeats *int             `json:"num_repeats,omitempty"`
	Context    platform.Context `json:"context"`
}

// Repeats returns the requested repeat count, applying the default
func (c ServiceCall) Repeats() int {
	if c.NumRepeats == nil {
		return DefaultNumRepeats
	}
	return *c.NumRepeats
}

// Validate checks the call arguments against the service schema
func (c ServiceCall) Validate() error {
	switch c.Service {
	case ServiceTurnOn, ServiceTurnOff:
	case ServiceSendCommand:
		if len(c.Command) == 0 {
			return fmt.Errorf("%w: command is required for %s", ErrInvalidCall, c.Service)
		}
		if c.Repeats() < 0 {
			return fmt.Errorf("%w: num_repeats must be zero or positive, got %d", ErrInvalidCall, c.Repeats())
		}
	default:
		return fmt.Errorf("%w: unsupported remote service: %s", ErrInvalidCall, c.Service)
	}

	if c.EntityID == "" {
		return fmt.Errorf("%w: entity_id is required", ErrInvalidCall)
	}
	return nil
}

// Call resolves the target entity in the registry and runs the service on it.
// The call context is attached to ctx so entity methods can hand it on.
func Call(ctx context.Context, registry *platform.Registry, call ServiceCall) error {
	if err := call.Validate(); err != nil {
		return err
	}

	found, err := registry.Get(call.EntityID)
	if err != nil {
		return err
	}
	entity, ok := found.(Entity)
	if !ok {
		return fmt.Errorf("%w: entity %s is not a remote", ErrInvalidCall, call.EntityID)
	}

	ctx, err = platform.EnterEntity(ctx, call.EntityID)
	if err != nil {
		return err
	}

	if call.Context.ID == "" {
		call.Context = platform.NewContext(call.Context.UserID)
	}
	ctx = platform.WithContext(ctx, call.Context)

	switch call.Service {
	case ServiceTurnOn:
		return entity.TurnOn(ctx)
	case ServiceTurnOff:
		return entity.TurnOff(ctx)
	default:
		return entity.SendCommand(ctx, call.Command, call.Repeats())
	}
}

// ParseService converts a service name, accepting dashes for underscores
func ParseService(name string) (Service, error) {
	for _, s := range Services {
		if string(s) == name || dashed(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unsupported remote service: %s", name)
}

func dashed(s Service) string {
	b := []byte(s)
	for i := range b {
		if b[i] == '_' {
			b[i] = '-'
		}
	}
	return string(b)
}
