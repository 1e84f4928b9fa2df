// Package wol sends Wake-on-LAN magic packets.
package wol

import (
	"bytes"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultBroadcast is the address magic packets are sent to unless configured
const DefaultBroadcast = "255.255.255.255:9"

// PacketSize is the length of a magic packet without password
const PacketSize = 6 + 16*6

// ParseMAC parses a 48-bit hardware address. Besides the forms accepted by
// net.ParseMAC it takes twelve bare hex digits.
func ParseMAC(s string) (net.HardwareAddr, error) {
	s = strings.TrimSpace(s)
	if len(s) == 12 && !strings.ContainsAny(s, ":-.") {
		parts := make([]string, 0, 6)
		for i := 0; i < 12; i += 2 {
			parts = append(parts, s[i:i+2])
		}
		s = strings.Join(parts, ":")
	}

	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	if len(mac) != 6 {
		return nil, fmt.Errorf("invalid MAC address %q: want 6 bytes, got %d", s, len(mac))
	}
	return mac, nil
}

// MagicPacket builds the payload that wakes the device with the given MAC
func MagicPacket(mac net.HardwareAddr) []byte {
	packet := make([]byte, 0, PacketSize)
	packet = append(packet, bytes.Repeat([]byte{0xFF}, 6)...)
	for i := 0; i < 16; i++ {
		packet = append(packet, mac...)
	}
	return packet
}

// Sender writes magic packets to a UDP broadcast address
type Sender struct {
	Broadcast string
	Timeout   time.Duration
}

// NewSender creates a sender for the broadcast address, or the default one
// when broadcast is empty
func NewSender(broadcast string) *Sender {
	if broadcast == "" {
		broadcast = DefaultBroadcast
	}
	return &Sender{
		Broadcast: broadcast,
		Timeout:   5 * time.Second,
	}
}

// Send blocks until the packet for mac has been written
func (s *Sender) Send(mac string) error {
	hw, err := ParseMAC(mac)
	if err != nil {
		return err
	}

	addr, err := net.ResolveUDPAddr("udp4", s.Broadcast)
	if err != nil {
		return fmt.Errorf("failed to resolve broadcast address: %w", err)
	}

	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return fmt.Errorf("failed to open wake-on-lan socket: %w", err)
	}
	defer conn.Close()

	if s.Timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.Timeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if _, err := conn.Write(MagicPacket(hw)); err != nil {
		return fmt.Errorf("failed to send magic packet: %w", err)
	}
	return nil
}
