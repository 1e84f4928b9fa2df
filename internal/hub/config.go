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

package hub

import (
	"fmt"
	"net/url"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"tvremote/internal/action"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
	"tvremote/internal/wol"
)

// Television bridge types
const (
	BridgeBravia    = "bravia"
	BridgeSimulated = "simulated"
)

// Config represents the hub configuration structure
type Config struct {
	Hub         HubConfig          `yaml:"hub"`
	API         APIConfig          `yaml:"api"`
	MQTT        MQTTConfig         `yaml:"mqtt"`
	Log         LogConfig          `yaml:"log"`
	Televisions []TelevisionConfig `yaml:"televisions"`
}

// HubConfig contains hub identity
type HubConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// APIConfig contains the HTTP service API settings
type APIConfig struct {
	Listen           string `yaml:"listen"`
	JWTSecret        string `yaml:"jwt_secret"` // empty disables authentication
	JWTIssuer        string `yaml:"jwt_issuer"`
	TokenExpiryHours int    `yaml:"token_expiry_hours"`
}

// MQTTConfig contains the MQTT command channel settings
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	KeepAlive   uint16 `yaml:"keep_alive"`
}

// LogConfig contains the optional rotated log file settings
type LogConfig struct {
	File       string `yaml:"file"` // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Environment variables that override secrets from the file
const (
	EnvJWTSecret    = "TVREMOTE_JWT_SECRET"
	EnvMQTTUsername = "TVREMOTE_MQTT_USERNAME"
	EnvMQTTPassword = "TVREMOTE_MQTT_PASSWORD"
)

// TelevisionConfig represents a single television
type TelevisionConfig struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Type         string         `yaml:"type"`
	Host         string         `yaml:"host"`
	Credential   string         `yaml:"credential"`
	MAC          string         `yaml:"mac"`
	Broadcast    string         `yaml:"broadcast"` // wake-on-lan target, host:port
	Model        string         `yaml:"model"`
	Manufacturer string         `yaml:"manufacturer"`
	TurnOnAction *action.Config `yaml:"turn_on_action,omitempty"`
}

// LoadConfig loads configuration from a YAML file and applies the secret
// overrides from the environment
func LoadConfig(filepath string) (*Config, error) {
	config, err := LoadConfigFile(filepath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv()
	return config, nil
}

// LoadConfigFile loads configuration exactly as stored in the YAML file.
// Configs that are written back to disk must be loaded with it so that
// secrets from the environment never reach the file.
func LoadConfigFile(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// ApplyEnv replaces secrets with the values of their environment variables
// when those are set
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.API.JWTSecret = v
	}
	if v := os.Getenv(EnvMQTTUsername); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv(EnvMQTTPassword); v != "" {
		c.MQTT.Password = v
	}
}

// ApplyDefaults fills optional settings that were left empty
func (c *Config) ApplyDefaults() {
	if c.Hub.Name == "" {
		c.Hub.Name = c.Hub.ID
	}
	if c.API.Listen == "" {
		c.API.Listen = ":8081"
	}
	if c.API.JWTIssuer == "" {
		c.API.JWTIssuer = "tvremote"
	}
	if c.API.TokenExpiryHours <= 0 {
		c.API.TokenExpiryHours = 24
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "tvremote"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "tvremote-" + c.Hub.ID
	}
	if c.MQTT.KeepAlive == 0 {
		c.MQTT.KeepAlive = 20
	}
	if c.Log.File != "" {
		if c.Log.MaxSizeMB <= 0 {
			c.Log.MaxSizeMB = 10
		}
		if c.Log.MaxBackups <= 0 {
			c.Log.MaxBackups = 3
		}
		if c.Log.MaxAgeDays <= 0 {
			c.Log.MaxAgeDays = 28
		}
	}
	for i := range c.Televisions {
		if c.Televisions[i].Name == "" {
			c.Televisions[i].Name = c.Televisions[i].ID
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Hub.ID == "" {
		return fmt.Errorf("hub.id is required")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if _, err := url.Parse(c.MQTT.Broker); err != nil {
			return fmt.Errorf("mqtt.broker is invalid: %w", err)
		}
	}

	if len(c.Televisions) == 0 {
		return fmt.Errorf("at least one television must be configured")
	}

	ids := make(map[string]bool)
	for i, tv := range c.Televisions {
		if tv.ID == "" {
			return fmt.Errorf("televisions[%d].id is required", i)
		}
		if ids[tv.ID] {
			return fmt.Errorf("duplicate television ID: %s", tv.ID)
		}
		ids[tv.ID] = true

		switch tv.Type {
		case BridgeBravia:
			if tv.Host == "" {
				return fmt.Errorf("televisions[%d].host is required", i)
			}
			if tv.Credential == "" {
				return fmt.Errorf("televisions[%d].credential is required for bravia", i)
			}
		case BridgeSimulated:
		case "":
			return fmt.Errorf("televisions[%d].type is required", i)
		default:
			return fmt.Errorf("televisions[%d].type %q is not supported", i, tv.Type)
		}

		if tv.MAC != "" {
			if _, err := wol.ParseMAC(tv.MAC); err != nil {
				return fmt.Errorf("televisions[%d].mac: %w", i, err)
			}
		}

		if tv.TurnOnAction != nil {
			if err := tv.TurnOnAction.Validate(); err != nil {
				return fmt.Errorf("televisions[%d].turn_on_action: %w", i, err)
			}
			if tv.TurnOnAction.Type == action.TypeService && tv.TurnOnAction.EntityID == tv.EntityID() {
				return fmt.Errorf("televisions[%d].turn_on_action: service action cannot target %s itself", i, tv.EntityID())
			}
		}
	}

	return nil
}

// EntityID returns the remote entity id the television is registered under
// when no other television shares its name
func (tv TelevisionConfig) EntityID() string {
	name := tv.Name
	if name == "" {
		name = tv.ID
	}
	return remote.Domain + "." + platform.Slugify(name)
}

// GetTelevision returns a television configuration by ID
func (c *Config) GetTelevision(id string) (*TelevisionConfig, error) {
	for i := range c.Televisions {
		if c.Televisions[i].ID == id {
			return &c.Televisions[i], nil
		}
	}
	return nil, fmt.Errorf("television not found: %s", id)
}

// Save saves the configuration to a YAML file
func (c *Config) Save(filepath string) error {
	return SaveConfig(c, filepath)
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filepath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewDefaultConfig creates a default configuration template
func NewDefaultConfig() *Config {
	config := &Config{
		Hub: HubConfig{
			ID:   "hub_" + uuid.NewString()[:8],
			Name: "Living Room Hub",
		},
		API: APIConfig{
			Listen: ":8081",
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker:  "mqtt://localhost:1883",
		},
		Televisions: []TelevisionConfig{
			{
				ID:           "living_room_tv",
				Name:         "Living Room TV",
				Type:         BridgeBravia,
				Host:         "192.168.1.100",
				Credential:   "psk_key_here",
				MAC:          "aa:bb:cc:dd:ee:ff",
				Model:        "Sony Bravia",
				Manufacturer: "Sony",
			},
		},
	}
	config.ApplyDefaults()
	return config
}
