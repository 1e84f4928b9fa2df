package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Context identifies the origin of a service call so that actions started by
// it can be traced back.
type Context struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

type contextKey struct{}

type chainKey struct{}

// NewContext creates a call context with a fresh id
func NewContext(userID string) Context {
	return Context{ID: uuid.NewString(), UserID: userID}
}

// Child creates a call context caused by c
func (c Context) Child() Context {
	return Context{ID: uuid.NewString(), UserID: c.UserID, ParentID: c.ID}
}

// WithContext attaches a call context to ctx
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ContextFrom returns the call context attached to ctx. A new one is created
// when there is none.
func ContextFrom(ctx context.Context) Context {
	if c, ok := ctx.Value(contextKey{}).(Context); ok {
		return c
	}
	return NewContext("")
}

// EnterEntity records entityID in the chain of entities handling the call
// carried by ctx. An entity that is already in the chain cannot be entered
// again.
func EnterEntity(ctx context.Context, entityID string) (context.Context, error) {
	chain := CallChain(ctx)
	for _, id := range chain {
		if id == entityID {
			return ctx, &ServiceError{
				Message: fmt.Sprintf("Service call loop: %s -> %s", strings.Join(chain, " -> "), entityID),
				Err:     ErrCallLoop,
			}
		}
	}

	next := make([]string, len(chain), len(chain)+1)
	copy(next, chain)
	next = append(next, entityID)
	return context.WithValue(ctx, chainKey{}, next), nil
}

// CallChain returns the entity ids handling the call carried by ctx, the
// first caller first
func CallChain(ctx context.Context) []string {
	chain, _ := ctx.Value(chainKey{}).([]string)
	return chain
}
