// Package action builds the user-configured routines a television runs to
// turn itself on.
package action

import (
	"fmt"

	"tvremote/internal/platform"
	"tvremote/internal/remote"
)

// Action types
const (
	TypeWebhook = "webhook"
	TypeService = "service"
)

// Config describes one action in the hub configuration file
type Config struct {
	Type string `yaml:"type" json:"type"`

	// webhook
	URL     string            `yaml:"url,omitempty" json:"url,omitempty"`
	Method  string            `yaml:"method,omitempty" json:"method,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// service
	EntityID   string   `yaml:"entity_id,omitempty" json:"entity_id,omitempty"`
	Service    string   `yaml:"service,omitempty" json:"service,omitempty"`
	Command    []string `yaml:"command,omitempty" json:"command,omitempty"`
	NumRepeats *int     `yaml:"num_repeats,omitempty" json:"num_repeats,omitempty"`
}

// Validate checks that the fields needed by the action type are present
func (c Config) Validate() error {
	switch c.Type {
	case TypeWebhook:
		if c.URL == "" {
			return fmt.Errorf("url is required for webhook action")
		}
	case TypeService:
		if c.EntityID == "" {
			return fmt.Errorf("entity_id is required for service action")
		}
		if _, err := remote.ParseService(c.Service); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported action type: %s", c.Type)
	}
	return nil
}

// New builds the action described by cfg. Service actions resolve their
// target in registry when they run.
func New(cfg Config, registry *platform.Registry) (platform.Action, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case TypeWebhook:
		return NewWebhook(cfg.URL, cfg.Method, cfg.Headers), nil
	default:
		service, _ := remote.ParseService(cfg.Service)
		return &ServiceAction{
			Registry: registry,
			Call: remote.ServiceCall{
				Service:    service,
				EntityID:   cfg.EntityID,
				Command:    cfg.Command,
				NumRepeats: cfg.NumRepeats,
			},
		}, nil
	}
}
