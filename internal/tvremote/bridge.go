package tvremote

import "context"

// Bridge owns the connection to a television and speaks its protocol
type Bridge interface {
	// PowerOff asks the television to switch off
	PowerOff(ctx context.Context) error

	// PowerOffInProgress reports whether a power-off was requested recently
	// enough that the television may still be shutting down
	PowerOffInProgress() bool

	// SendKeys sends the keys in order
	SendKeys(ctx context.Context, keys []string) error
}

// WakeOnLAN sends a magic packet to a MAC address. Send blocks.
type WakeOnLAN interface {
	Send(mac string) error
}
