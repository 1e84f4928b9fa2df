package bridge

import "strings"

// IRCCCode is an infrared-compatible control code understood by the TV
type IRCCCode string

// IRCC codes for Sony Bravia televisions, keyed by remote key name
var irccCodes = map[string]IRCCCode{
	// Power
	"KEY_POWER":    "AAAAAQAAAAEAAAAVAw==",
	"KEY_POWERON":  "AAAAAQAAAAEAAAAuAw==",
	"KEY_POWEROFF": "AAAAAQAAAAEAAAAvAw==",

	// Volume
	"KEY_VOLUP":   "AAAAAQAAAAEAAAASAw==",
	"KEY_VOLDOWN": "AAAAAQAAAAEAAAATAw==",
	"KEY_MUTE":    "AAAAAQAAAAEAAAAUAw==",

	// Channel
	"KEY_CHUP":   "AAAAAQAAAAEAAAAQAw==",
	"KEY_CHDOWN": "AAAAAQAAAAEAAAARAw==",

	// Navigation
	"KEY_UP":     "AAAAAQAAAAEAAAB0Aw==",
	"KEY_DOWN":   "AAAAAQAAAAEAAAB1Aw==",
	"KEY_LEFT":   "AAAAAQAAAAEAAAA0Aw==",
	"KEY_RIGHT":  "AAAAAQAAAAEAAAAzAw==",
	"KEY_ENTER":  "AAAAAQAAAAEAAABlAw==",
	"KEY_HOME":   "AAAAAQAAAAEAAABgAw==",
	"KEY_MENU":   "AAAAAQAAAAEAAAAbAw==",
	"KEY_TOOLS":  "AAAAAgAAAAEAAAA2Aw==",
	"KEY_RETURN": "AAAAAgAAAAEAAAAjAw==",

	// Inputs
	"KEY_SOURCE": "AAAAAQAAAAEAAAAlAw==",
	"KEY_HDMI1":  "AAAAAgAAAAEAAABoAw==",
	"KEY_HDMI2":  "AAAAAgAAAAEAAABpAw==",
	"KEY_HDMI3":  "AAAAAgAAAAEAAABqAw==",
	"KEY_HDMI4":  "AAAAAgAAAAEAAABrAw==",

	// Playback
	"KEY_PLAY":   "AAAAAgAAAAEAAAAaAw==",
	"KEY_PAUSE":  "AAAAAgAAAAEAAAAZAw==",
	"KEY_STOP":   "AAAAAgAAAAEAAAAYAw==",
	"KEY_REWIND": "AAAAAgAAAAEAAAAbAw==",
	"KEY_FF":     "AAAAAgAAAAEAAAAcAw==",

	// Digits
	"KEY_0": "AAAAAQAAAAEAAAAJAw==",
	"KEY_1": "AAAAAQAAAAEAAAAAAw==",
	"KEY_2": "AAAAAQAAAAEAAAABAw==",
	"KEY_3": "AAAAAQAAAAEAAAACAw==",
	"KEY_4": "AAAAAQAAAAEAAAADAw==",
	"KEY_5": "AAAAAQAAAAEAAAAEAw==",
	"KEY_6": "AAAAAQAAAAEAAAAFAw==",
	"KEY_7": "AAAAAQAAAAEAAAAGAw==",
	"KEY_8": "AAAAAQAAAAEAAAAHAw==",
	"KEY_9": "AAAAAQAAAAEAAAAIAw==",
}

// keyAliases lets "back" style short names stand in for key names
var keyAliases = map[string]string{
	"BACK":    "KEY_RETURN",
	"OK":      "KEY_ENTER",
	"CONFIRM": "KEY_ENTER",
	"INPUT":   "KEY_SOURCE",
	"OPTIONS": "KEY_TOOLS",
}

// LookupKey returns the IRCC code for a key name. Names are case-insensitive
// and the KEY_ prefix is optional.
func LookupKey(name string) (IRCCCode, bool) {
	key := NormalizeKey(name)
	code, ok := irccCodes[key]
	return code, ok
}

// NormalizeKey maps a user-supplied key name onto the canonical KEY_ form
func NormalizeKey(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	if !strings.HasPrefix(key, "KEY_") {
		key = "KEY_" + key
	}
	return key
}

// Keys returns every supported key name
func Keys() []string {
	keys := make([]string, 0, len(irccCodes))
	for k := range irccCodes {
		keys = append(keys, k)
	}
	return keys
}
