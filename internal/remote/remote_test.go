package remote_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
)

type recordingRemote struct {
	*platform.EntityBase

	calls    []string
	commands []string
	repeats  int
	callCtx  platform.Context
}

func (r *recordingRemote) TurnOn(ctx context.Context) error {
	r.calls = append(r.calls, "turn_on")
	r.callCtx = platform.ContextFrom(ctx)
	return nil
}

func (r *recordingRemote) TurnOff(ctx context.Context) error {
	r.calls = append(r.calls, "turn_off")
	return nil
}

func (r *recordingRemote) SendCommand(ctx context.Context, commands []string, numRepeats int) error {
	r.calls = append(r.calls, "send_command")
	r.commands = commands
	r.repeats = numRepeats
	return nil
}

type plainEntity struct {
	*platform.EntityBase
}

func setup(t *testing.T) (*platform.Registry, *recordingRemote) {
	t.Helper()
	registry := platform.NewRegistry()
	r := &recordingRemote{EntityBase: &platform.EntityBase{
		Domain: remote.Domain,
		Device: platform.DeviceInfo{Name: "TV"},
	}}
	registry.AddEntities(r)
	require.Equal(t, "remote.tv", r.EntityID())
	return registry, r
}

func repeats(n int) *int {
	return &n
}

func TestCall(t *testing.T) {
	t.Run("dispatches turn_on with the call context", func(t *testing.T) {
		registry, r := setup(t)
		callCtx := platform.NewContext("user-1")

		err := remote.Call(context.Background(), registry, remote.ServiceCall{
			Service:  remote.ServiceTurnOn,
			EntityID: "remote.tv",
			Context:  callCtx,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"turn_on"}, r.calls)
		assert.Equal(t, callCtx, r.callCtx)
	})

	t.Run("creates a call context when the caller has none", func(t *testing.T) {
		registry, r := setup(t)

		require.NoError(t, remote.Call(context.Background(), registry, remote.ServiceCall{
			Service:  remote.ServiceTurnOn,
			EntityID: "remote.tv",
		}))
		assert.NotEmpty(t, r.callCtx.ID)
	})

	t.Run("dispatches turn_off", func(t *testing.T) {
		registry, r := setup(t)

		require.NoError(t, remote.Call(context.Background(), registry, remote.ServiceCall{
			Service:  remote.ServiceTurnOff,
			EntityID: "remote.tv",
		}))
		assert.Equal(t, []string{"turn_off"}, r.calls)
	})

	t.Run("defaults num_repeats to one", func(t *testing.T) {
		registry, r := setup(t)

		require.NoError(t, remote.Call(context.Background(), registry, remote.ServiceCall{
			Service:  remote.ServiceSendCommand,
			EntityID: "remote.tv",
			Command:  []string{"KEY_MUTE"},
		}))
		assert.Equal(t, []string{"KEY_MUTE"}, r.commands)
		assert.Equal(t, remote.DefaultNumRepeats, r.repeats)
	})

	t.Run("passes explicit num_repeats", func(t *testing.T) {
		registry, r := setup(t)

		require.NoError(t, remote.Call(context.Background(), registry, remote.ServiceCall{
			Service:    remote.ServiceSendCommand,
			EntityID:   "remote.tv",
			Command:    []string{"KEY_VOLUP"},
			NumRepeats: repeats(4),
		}))
		assert.Equal(t, 4, r.repeats)
	})

	t.Run("rejects invalid calls", func(t *testing.T) {
		registry, r := setup(t)
		registry.AddEntities(plainEntity{&platform.EntityBase{Domain: "sensor", Name: "Temp"}})

		tests := []struct {
			name string
			call remote.ServiceCall
			want string
		}{
			{"missing command", remote.ServiceCall{Service: remote.ServiceSendCommand, EntityID: "remote.tv"}, "command is required"},
			{"negative repeats", remote.ServiceCall{Service: remote.ServiceSendCommand, EntityID: "remote.tv", Command: []string{"KEY_UP"}, NumRepeats: repeats(-1)}, "num_repeats"},
			{"unknown service", remote.ServiceCall{Service: "learn_command", EntityID: "remote.tv"}, "unsupported remote service"},
			{"missing entity id", remote.ServiceCall{Service: remote.ServiceTurnOn}, "entity_id is required"},
			{"unknown entity", remote.ServiceCall{Service: remote.ServiceTurnOn, EntityID: "remote.nope"}, "entity not found"},
			{"not a remote", remote.ServiceCall{Service: remote.ServiceTurnOn, EntityID: "sensor.temp"}, "is not a remote"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := remote.Call(context.Background(), registry, tt.call)
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.want)
			})
		}
		assert.Empty(t, r.calls)
	})
}

func TestParseService(t *testing.T) {
	for _, name := range []string{"send_command", "send-command"} {
		s, err := remote.ParseService(name)
		require.NoError(t, err)
		assert.Equal(t, remote.ServiceSendCommand, s)
	}

	_, err := remote.ParseService("toggle")
	assert.Error(t, err)
}
