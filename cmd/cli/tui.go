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
	"github.com/charmbracelet/bubbletea"
	"tvremote/internal/hub"
)

// Main TUI model that routes between screens
type model struct {
	currentScreen screen
	width         int
	height        int
	quitting      bool

	caller    hub.Caller
	debugMode bool
	testMode  bool

	// Screen models
	pickerModel PickerModel
	remoteModel RemoteModel
}

func initialModel(caller hub.Caller, debug, test bool) model {
	return model{
		currentScreen: screenEntityPicker,
		caller:        caller,
		debugMode:     debug,
		testMode:      test,
		pickerModel:   NewPickerModel(caller),
	}
}

func (m model) Init() tea.Cmd {
	return m.pickerModel.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.remoteModel.width = msg.Width
		m.remoteModel.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "q":
			if m.currentScreen == screenEntityPicker {
				m.quitting = true
				return m, tea.Quit
			}
			// In remote screen, 'q' goes back to the picker
			m.currentScreen = screenEntityPicker
			m.pickerModel = NewPickerModel(m.caller)
			return m, m.pickerModel.Init()
		}
	}

	switch m.currentScreen {
	case screenEntityPicker:
		var cmd tea.Cmd
		m.pickerModel, cmd = m.pickerModel.Update(msg)

		if selected := m.pickerModel.Selected(); selected != nil {
			m.remoteModel = NewRemoteModel(m.caller, *selected, m.debugMode, m.testMode)
			m.remoteModel.width = m.width
			m.remoteModel.height = m.height
			m.currentScreen = screenRemoteControl
		}
		return m, cmd

	case screenRemoteControl:
		var cmd tea.Cmd
		m.remoteModel, cmd = m.remoteModel.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return successStyle.Render("Bye!") + "\n"
	}

	switch m.currentScreen {
	case screenEntityPicker:
		return m.pickerModel.View()
	case screenRemoteControl:
		return m.remoteModel.View()
	default:
		return "Unknown screen"
	}
}

// StartTUI runs the interactive remote until the user quits
func StartTUI(caller hub.Caller, debug, test bool) error {
	p := tea.NewProgram(
		initialModel(caller, debug, test),
		tea.WithAltScreen(),
	)

	defer func() {
		if r := recover(); r != nil {
			p.Kill()
		}
	}()

	_, err := p.Run()
	return err
}
