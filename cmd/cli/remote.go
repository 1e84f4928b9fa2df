// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"tvremote/internal/hub"
	"tvremote/internal/logger"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
)

// LogEntry is a line of the log pane
type LogEntry struct {
	Timestamp time.Time
	Level     string // INF, ERR
	Message   string
}

type callResultMsg struct {
	label    string
	response *hub.ServiceResponse
	err      error
}

// RemoteModel handles the remote control screen
type RemoteModel struct {
	caller hub.Caller
	entity platform.EntityInfo

	selectedButton  remoteButton
	lastButtonPress time.Time
	pending         int

	lastResult *callResultMsg

	debugMode bool
	testMode  bool

	width  int
	height int

	logBuffer []LogEntry
}

// NewRemoteModel creates the remote control screen for an entity
func NewRemoteModel(caller hub.Caller, entity platform.EntityInfo, debug, test bool) RemoteModel {
	return RemoteModel{
		caller:    caller,
		entity:    entity,
		debugMode: debug,
		testMode:  test,
	}
}

// Update handles remote control screen messages
func (m RemoteModel) Update(msg tea.Msg) (RemoteModel, tea.Cmd) {
	switch msg := msg.(type) {
	case callResultMsg:
		m.pending--
		m.lastResult = &msg
		m.logResult(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			return m.press(buttonUp)
		case "down":
			return m.press(buttonDown)
		case "left":
			return m.press(buttonLeft)
		case "right":
			return m.press(buttonRight)
		case "enter":
			return m.press(buttonOK)

		case "o":
			return m.press(buttonPowerOn)
		case "p":
			return m.press(buttonPowerOff)
		case "+", "=":
			return m.press(buttonVolumeUp)
		case "-":
			return m.press(buttonVolumeDown)
		case "m":
			return m.press(buttonMute)

		case "pgup":
			return m.press(buttonChannelUp)
		case "pgdown":
			return m.press(buttonChannelDown)

		case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
			return m.press(buttonNum0 + remoteButton(msg.String()[0]-'0'))

		case "h":
			return m.press(buttonHome)
		case "tab":
			return m.press(buttonMenu)
		case "backspace", "esc":
			return m.press(buttonBack)
		case "i":
			return m.press(buttonInput)

		case "f1":
			return m.press(buttonHDMI1)
		case "f2":
			return m.press(buttonHDMI2)
		case "f3":
			return m.press(buttonHDMI3)
		case "f4":
			return m.press(buttonHDMI4)
		}
	}

	return m, nil
}

// press turns a button into a service call run in the background
func (m RemoteModel) press(button remoteButton) (RemoteModel, tea.Cmd) {
	m.selectedButton = button
	m.lastButtonPress = time.Now()
	m.pending++

	req := hub.ServiceRequest{EntityID: m.entity.EntityID}
	var service remote.Service
	var label string

	switch button {
	case buttonPowerOn:
		service, label = remote.ServiceTurnOn, "turn on"
	case buttonPowerOff:
		service, label = remote.ServiceTurnOff, "turn off"
	default:
		key := buttonKeys[button]
		service, label = remote.ServiceSendCommand, key
		req.Command = []string{key}
	}

	return m, callService(m.caller, service, label, req)
}

func callService(caller hub.Caller, service remote.Service, label string, req hub.ServiceRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := caller.Call(ctx, service, req)

		log := logger.ForComponent("tui")
		log.Info().
			Str("entity_id", req.EntityID).
			Str("service", string(service)).
			Strs("command", req.Command).
			Bool("success", err == nil && resp.Success).
			Msg("Remote button pressed")

		return callResultMsg{label: label, response: resp, err: err}
	}
}

func (r callResultMsg) failure() string {
	if r.err != nil {
		return r.err.Error()
	}
	if !r.response.Success {
		return r.response.Error
	}
	return ""
}

func (m *RemoteModel) logResult(r callResultMsg) {
	if !m.debugMode && !m.testMode {
		return
	}

	entry := LogEntry{Timestamp: time.Now(), Level: "INF"}
	if failure := r.failure(); failure != "" {
		entry.Level = "ERR"
		entry.Message = fmt.Sprintf("%s failed: %s", r.label, failure)
	} else if m.testMode {
		entry.Message = fmt.Sprintf("Test mode: %s simulated", r.label)
	} else {
		entry.Message = fmt.Sprintf("%s sent (context %s)", r.label, r.response.ContextID)
	}

	m.logBuffer = append(m.logBuffer, entry)
	if len(m.logBuffer) > 20 {
		m.logBuffer = m.logBuffer[1:]
	}
}

// View renders the remote control screen
func (m RemoteModel) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("tvremote - "+m.entity.Name))

	info := successStyle.Render("📺 " + m.entity.EntityID)
	if m.entity.Device.Model != "" {
		info += " " + m.entity.Device.Model
	}
	if m.testMode {
		info += " " + lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Render("(Test)")
	}
	sections = append(sections, info)

	sections = append(sections, m.renderLayout())

	if status := m.renderStatusBar(); status != "" {
		sections = append(sections, status)
	}

	if logDisplay := m.renderLogDisplay(); logDisplay != "" {
		sections = append(sections, logDisplay)
	}

	sections = append(sections, m.renderHelpText())

	return strings.Join(sections, "\n\n")
}

func (m RemoteModel) renderLayout() string {
	style := func(btn remoteButton) lipgloss.Style {
		if m.selectedButton == btn && time.Since(m.lastButtonPress) < 200*time.Millisecond {
			return remoteButtonActiveStyle
		}
		return remoteButtonStyle
	}

	navColumn := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Render("Power & Navigation:"),
		lipgloss.JoinHorizontal(lipgloss.Center,
			style(buttonPowerOn).Render(" ON   "),
			style(buttonPowerOff).Render(" OFF  ")),
		style(buttonUp).Render("  ↑   "),
		lipgloss.JoinHorizontal(lipgloss.Center,
			style(buttonLeft).Render("  ←   "),
			style(buttonOK).Render(" OK   "),
			style(buttonRight).Render("  →   ")),
		style(buttonDown).Render("  ↓   "),
	)

	volumeColumn := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Render("Volume & Channel:"),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonVolumeUp).Render("VOL + "),
			style(buttonChannelUp).Render("CH +  ")),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonVolumeDown).Render("VOL - "),
			style(buttonChannelDown).Render("CH -  ")),
		style(buttonMute).Render("MUTE  "),
	)

	functionColumn := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Render("Functions:"),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonHome).Render("HOME  "),
			style(buttonMenu).Render("MENU  ")),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonBack).Render("BACK  "),
			style(buttonInput).Render("INPUT ")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9")).Render("HDMI:"),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonHDMI1).Render("HDMI1 "),
			style(buttonHDMI2).Render("HDMI2 ")),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonHDMI3).Render("HDMI3 "),
			style(buttonHDMI4).Render("HDMI4 ")),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		navColumn,
		strings.Repeat(" ", 4),
		volumeColumn,
		strings.Repeat(" ", 4),
		functionColumn,
	)
}

func (m RemoteModel) renderStatusBar() string {
	if m.pending > 0 {
		return helpStyle.Render("Sending...")
	}
	if m.lastResult == nil {
		return ""
	}
	if failure := m.lastResult.failure(); failure != "" {
		return errorStyle.Render("✗ " + failure)
	}
	return successStyle.Render("✓ " + m.lastResult.label)
}

// renderLogDisplay shows the last three log lines
func (m RemoteModel) renderLogDisplay() string {
	if len(m.logBuffer) == 0 {
		return ""
	}

	const maxLines = 3
	start := 0
	if len(m.logBuffer) > maxLines {
		start = len(m.logBuffer) - maxLines
	}

	header := "─── LOGS ───"
	if start > 0 {
		header = "─── LOGS ↓ ───"
	}
	lines := []string{helpStyle.Render(header)}

	for _, entry := range m.logBuffer[start:] {
		levelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
		if entry.Level == "ERR" {
			levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
		}

		line := fmt.Sprintf("%s [%s] %s", entry.Timestamp.Format("15:04:05"), levelStyle.Render(entry.Level), entry.Message)
		if len(line) > 90 {
			line = line[:87] + "..."
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (m RemoteModel) renderHelpText() string {
	help := "Arrows: Navigate • Enter: OK • O/P: On/Off • +/-: Volume • M: Mute • 0-9: Numbers"
	if m.width > 100 {
		help += " • PgUp/PgDn: Channel • H: Home • Tab: Menu • I: Input • F1-F4: HDMI • q: Back"
	} else {
		help += " • q: Back"
	}
	return helpStyle.Render(help)
}
