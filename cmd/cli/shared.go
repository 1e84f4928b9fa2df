package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Screen types
type screen int

const (
	screenEntityPicker screen = iota
	screenRemoteControl
)

// Common styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	itemSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("#FF79C6")).
				Bold(true)

	remoteButtonStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1).
				Margin(0, 1).
				Background(lipgloss.Color("#44475A")).
				Foreground(lipgloss.Color("#F8F8F2"))

	remoteButtonActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1).
				Margin(0, 1).
				Background(lipgloss.Color("#FF79C6")).
				Foreground(lipgloss.Color("#FAFAFA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))
)

// Remote button types
type remoteButton int

const (
	buttonPowerOn remoteButton = iota
	buttonPowerOff
	buttonVolumeUp
	buttonVolumeDown
	buttonMute
	buttonChannelUp
	buttonChannelDown
	buttonUp
	buttonDown
	buttonLeft
	buttonRight
	buttonOK
	buttonHome
	buttonMenu
	buttonBack
	buttonInput
	buttonNum0
	buttonNum1
	buttonNum2
	buttonNum3
	buttonNum4
	buttonNum5
	buttonNum6
	buttonNum7
	buttonNum8
	buttonNum9
	buttonHDMI1
	buttonHDMI2
	buttonHDMI3
	buttonHDMI4
)

// buttonKeys maps the key-sending buttons to remote key names
var buttonKeys = map[remoteButton]string{
	buttonVolumeUp:    "KEY_VOLUP",
	buttonVolumeDown:  "KEY_VOLDOWN",
	buttonMute:        "KEY_MUTE",
	buttonChannelUp:   "KEY_CHUP",
	buttonChannelDown: "KEY_CHDOWN",
	buttonUp:          "KEY_UP",
	buttonDown:        "KEY_DOWN",
	buttonLeft:        "KEY_LEFT",
	buttonRight:       "KEY_RIGHT",
	buttonOK:          "KEY_ENTER",
	buttonHome:        "KEY_HOME",
	buttonMenu:        "KEY_MENU",
	buttonBack:        "KEY_RETURN",
	buttonInput:       "KEY_SOURCE",
	buttonNum0:        "KEY_0",
	buttonNum1:        "KEY_1",
	buttonNum2:        "KEY_2",
	buttonNum3:        "KEY_3",
	buttonNum4:        "KEY_4",
	buttonNum5:        "KEY_5",
	buttonNum6:        "KEY_6",
	buttonNum7:        "KEY_7",
	buttonNum8:        "KEY_8",
	buttonNum9:        "KEY_9",
	buttonHDMI1:       "KEY_HDMI1",
	buttonHDMI2:       "KEY_HDMI2",
	buttonHDMI3:       "KEY_HDMI3",
	buttonHDMI4:       "KEY_HDMI4",
}
