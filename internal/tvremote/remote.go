package tvremote

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"tvremote/internal/logger"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
	"tvremote/internal/wol"
)

// ConfigEntry is a television config entry whose runtime data is its bridge
type ConfigEntry = platform.ConfigEntry[Bridge]

// Remote exposes a television as a remote-control entity
type Remote struct {
	*platform.EntityBase

	bridge       Bridge
	mac          string
	turnOnAction platform.Action
	wakeOnLAN    WakeOnLAN
	logger       zerolog.Logger
}

var _ remote.Entity = (*Remote)(nil)

// Option configures a Remote
type Option func(*Remote)

// WithTurnOnAction sets the routine run by TurnOn
func WithTurnOnAction(action platform.Action) Option {
	return func(r *Remote) {
		r.turnOnAction = action
	}
}

// WithWakeOnLAN replaces the magic packet sender used by TurnOn
func WithWakeOnLAN(sender WakeOnLAN) Option {
	return func(r *Remote) {
		r.wakeOnLAN = sender
	}
}

// NewRemote creates the remote entity for a television entry
func NewRemote(bridge Bridge, entry *ConfigEntry, opts ...Option) *Remote {
	uniqueID := entry.UniqueID
	if uniqueID == "" {
		uniqueID = entry.EntryID
	}

	deviceName := entry.Get(platform.ConfName)
	if deviceName == "" {
		deviceName = entry.Title
	}

	r := &Remote{
		EntityBase: &platform.EntityBase{
			Domain:   remote.Domain,
			UniqueID: uniqueID,
			Device: platform.DeviceInfo{
				Identifiers:  []string{uniqueID},
				Name:         deviceName,
				Manufacturer: entry.Get(platform.ConfManufacturer),
				Model:        entry.Get(platform.ConfModel),
			},
		},
		bridge:    bridge,
		mac:       entry.Get(platform.ConfMAC),
		wakeOnLAN: wol.NewSender(""),
		logger:    logger.ForComponent("tvremote"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// TurnOff turns the television off
func (r *Remote) TurnOff(ctx context.Context) error {
	return r.bridge.PowerOff(ctx)
}

// SendCommand sends the command list numRepeats times. Supported keys vary
// between models. Nothing is sent while the television is powering off.
func (r *Remote) SendCommand(ctx context.Context, commands []string, numRepeats int) error {
	if r.bridge.PowerOffInProgress() {
		r.logger.Info().
			Str("entity_id", r.EntityID()).
			Strs("command", commands).
			Msg("TV is powering off, not sending keys")
		return nil
	}

	keys := make([]string, len(commands))
	copy(keys, commands)

	for i := 0; i < numRepeats; i++ {
		if err := r.bridge.SendKeys(ctx, keys); err != nil {
			return err
		}
	}

	return nil
}

// TurnOn runs the configured turn-on action, or wakes the television over
// the network when only its MAC address is known
func (r *Remote) TurnOn(ctx context.Context) error {
	switch {
	case r.turnOnAction != nil:
		return r.turnOnAction.Run(ctx, platform.ContextFrom(ctx))

	case r.mac != "":
		r.logger.Debug().
			Str("entity_id", r.EntityID()).
			Str("mac", r.mac).
			Msg("Sending wake-on-lan packet")
		return runBlocking(ctx, func() error {
			return r.wakeOnLAN.Send(r.mac)
		})

	default:
		return &platform.ServiceError{
			Message: fmt.Sprintf("Entity %s does not support this service.", r.EntityID()),
			Err:     platform.ErrNotSupported,
		}
	}
}

// runBlocking runs fn on its own goroutine and waits for it or for ctx
func runBlocking(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
