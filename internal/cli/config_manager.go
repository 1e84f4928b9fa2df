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

// Package cli edits the television list of a hub configuration file.
package cli

import (
	"fmt"
	"os"

	"tvremote/internal/hub"
)

// ConfigManager handles hub configuration file operations
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig loads the hub configuration as stored on disk, creating the
// default one when the file does not exist yet
func (cm *ConfigManager) LoadConfig() (*hub.Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		defaultConfig := hub.NewDefaultConfig()
		if err := cm.SaveConfig(defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	config, err := hub.LoadConfigFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return config, nil
}

// SaveConfig validates and saves the hub configuration
func (cm *ConfigManager) SaveConfig(config *hub.Config) error {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	if err := hub.SaveConfig(config, cm.configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// AddTelevision adds a new television to the configuration
func (cm *ConfigManager) AddTelevision(tv hub.TelevisionConfig) error {
	config, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	if _, err := config.GetTelevision(tv.ID); err == nil {
		return fmt.Errorf("television with ID '%s' already exists", tv.ID)
	}

	config.Televisions = append(config.Televisions, tv)
	return cm.SaveConfig(config)
}

// UpdateTelevision replaces an existing television, keeping its ID
func (cm *ConfigManager) UpdateTelevision(tvID string, updated hub.TelevisionConfig) error {
	config, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	tv, err := config.GetTelevision(tvID)
	if err != nil {
		return fmt.Errorf("television with ID '%s' not found", tvID)
	}

	updated.ID = tvID
	*tv = updated
	return cm.SaveConfig(config)
}

// RemoveTelevision removes a television from the configuration. The last
// television cannot be removed.
func (cm *ConfigManager) RemoveTelevision(tvID string) error {
	config, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	for i, tv := range config.Televisions {
		if tv.ID == tvID {
			if len(config.Televisions) == 1 {
				return fmt.Errorf("cannot remove the only television '%s'", tvID)
			}
			config.Televisions = append(config.Televisions[:i], config.Televisions[i+1:]...)
			return cm.SaveConfig(config)
		}
	}

	return fmt.Errorf("television with ID '%s' not found", tvID)
}

// ListTelevisions returns all televisions from the configuration
func (cm *ConfigManager) ListTelevisions() ([]hub.TelevisionConfig, error) {
	config, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}

	return config.Televisions, nil
}

// GetConfigPath returns the configuration file path
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// BackupConfig creates a backup of the current configuration
func (cm *ConfigManager) BackupConfig() error {
	config, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	return hub.SaveConfig(config, cm.configPath+".backup")
}

// RestoreFromBackup restores configuration from backup
func (cm *ConfigManager) RestoreFromBackup() error {
	backupPath := cm.configPath + ".backup"

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	config, err := hub.LoadConfigFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to load backup: %w", err)
	}

	return cm.SaveConfig(config)
}

// GetSupportedTypes returns the supported television bridge types
func (cm *ConfigManager) GetSupportedTypes() []string {
	return []string{hub.BridgeBravia, hub.BridgeSimulated}
}

// CreateTelevisionTemplate creates a template television configuration
func (cm *ConfigManager) CreateTelevisionTemplate(tvType string) hub.TelevisionConfig {
	switch tvType {
	case hub.BridgeBravia:
		return hub.TelevisionConfig{
			Type:         hub.BridgeBravia,
			Host:         "192.168.1.100",
			Model:        "Sony Bravia",
			Manufacturer: "Sony",
		}
	default:
		return hub.TelevisionConfig{Type: tvType}
	}
}
