package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"tvremote/internal/hub"
	"tvremote/internal/platform"
)

type entitiesLoadedMsg struct {
	entities []platform.EntityInfo
	err      error
}

// PickerModel lists the remote entities and lets the user pick one
type PickerModel struct {
	caller   hub.Caller
	entities []platform.EntityInfo
	cursor   int
	loading  bool
	err      error
	selected *platform.EntityInfo
}

// NewPickerModel creates the entity picker
func NewPickerModel(caller hub.Caller) PickerModel {
	return PickerModel{caller: caller, loading: true}
}

// Init loads the entity list
func (m PickerModel) Init() tea.Cmd {
	return loadEntities(m.caller)
}

func loadEntities(caller hub.Caller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		entities, err := caller.Entities(ctx)
		return entitiesLoadedMsg{entities: entities, err: err}
	}
}

// Update handles picker messages
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entitiesLoadedMsg:
		m.loading = false
		m.entities = msg.entities
		m.err = msg.err
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entities)-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			return m, loadEntities(m.caller)
		case "enter":
			if len(m.entities) > 0 {
				selected := m.entities[m.cursor]
				m.selected = &selected
			}
		}
	}

	return m, nil
}

// Selected returns the picked entity, or nil
func (m PickerModel) Selected() *platform.EntityInfo {
	return m.selected
}

// View renders the picker
func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tvremote - Select Television"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading televisions...")
	case m.err != nil:
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	case len(m.entities) == 0:
		b.WriteString("No televisions configured.")
	default:
		b.WriteString(subtitleStyle.Render("Televisions:"))
		b.WriteString("\n")
		for i, e := range m.entities {
			line := fmt.Sprintf("%s (%s)", e.Name, e.EntityID)
			if e.Device.Model != "" {
				line += " - " + e.Device.Model
			}
			if i == m.cursor {
				b.WriteString(itemSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(itemStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓: Select • Enter: Connect • r: Reload • q: Quit"))
	return b.String()
}
