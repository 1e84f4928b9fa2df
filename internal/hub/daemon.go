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
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"tvremote/internal/logger"
)

// Daemon represents the hub daemon
type Daemon struct {
	config       *Config
	configPath   string
	entryManager *EntryManager
	api          *APIServer
	mqtt         *MQTTService
	logger       zerolog.Logger
	running      bool
	mutex        sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	debug        bool
	testMode     bool
}

// NewDaemon creates a new hub daemon
func NewDaemon(configPath string, debug, testMode bool) (*Daemon, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewDaemonWithConfig(config, configPath, debug, testMode), nil
}

// NewDaemonWithConfig creates a hub daemon from an already loaded configuration
func NewDaemonWithConfig(config *Config, configPath string, debug, testMode bool) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config:     config,
		configPath: configPath,
		logger:     logger.ForComponent("daemon"),
		ctx:        ctx,
		cancel:     cancel,
		debug:      debug,
		testMode:   testMode,
	}

	d.entryManager = NewEntryManager(config, testMode)
	d.api = NewAPIServer(config, d.entryManager)
	if config.MQTT.Enabled {
		d.mqtt = NewMQTTService(config, d.entryManager)
	}

	return d
}

// Start starts the hub daemon and blocks until a shutdown signal arrives or
// ctx is cancelled
func (d *Daemon) Start(ctx context.Context) error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.mutex.Unlock()

	d.logger.Info().
		Str("hub_id", d.config.Hub.ID).
		Bool("debug", d.debug).
		Bool("test_mode", d.testMode).
		Msg("Starting hub daemon")

	if err := d.entryManager.Initialize(d.ctx); err != nil {
		d.abort()
		return fmt.Errorf("failed to initialize televisions: %w", err)
	}

	if err := d.api.Start(); err != nil {
		d.abort()
		return fmt.Errorf("failed to start API server: %w", err)
	}

	if d.mqtt != nil {
		if err := d.mqtt.Start(d.ctx); err != nil {
			// autopaho keeps retrying in the background
			d.logger.Warn().Err(err).Msg("MQTT not connected yet, API is serving")
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	d.logger.Info().
		Int("entry_count", d.entryManager.GetEntryCount()).
		Str("listen", d.config.API.Listen).
		Bool("mqtt", d.mqtt != nil).
		Msg("Hub daemon started successfully")

	select {
	case sig := <-sigChan:
		d.logger.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case <-ctx.Done():
		d.logger.Info().Msg("Context cancelled")
	case <-d.ctx.Done():
	}

	return d.Stop()
}

func (d *Daemon) abort() {
	d.mutex.Lock()
	d.running = false
	d.mutex.Unlock()
}

// Stop stops the hub daemon gracefully
func (d *Daemon) Stop() error {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		return nil
	}
	d.running = false
	d.mutex.Unlock()

	d.logger.Info().Msg("Stopping hub daemon")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if d.mqtt != nil {
		if err := d.mqtt.Stop(shutdownCtx); err != nil {
			d.logger.Error().Err(err).Msg("Error stopping MQTT service")
		}
	}

	if err := d.api.Stop(shutdownCtx); err != nil {
		d.logger.Error().Err(err).Msg("Error stopping API server")
	}

	d.cancel()
	d.entryManager.Shutdown()

	d.logger.Info().Msg("Hub daemon stopped")
	return nil
}

// IsRunning returns whether the daemon is currently running
func (d *Daemon) IsRunning() bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.running
}

// EntryManager returns the daemon's entry manager
func (d *Daemon) EntryManager() *EntryManager {
	return d.entryManager
}

// GetStatus returns the current status of the daemon
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return map[string]interface{}{
		"running":      d.running,
		"debug":        d.debug,
		"test_mode":    d.testMode,
		"mqtt_enabled": d.mqtt != nil,
		"entry_count":  d.entryManager.GetEntryCount(),
		"entities":     d.entryManager.Entities(),
		"nonce_cache":  d.entryManager.GetNonceStats(),
	}
}

// ReloadConfig reloads the configuration and sets every television up again
func (d *Daemon) ReloadConfig(configPath string) error {
	d.logger.Info().
		Str("config_path", configPath).
		Msg("Reloading configuration")

	newConfig, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load new config: %w", err)
	}

	if err := d.entryManager.Reload(d.ctx, newConfig); err != nil {
		return fmt.Errorf("failed to reload entry manager: %w", err)
	}

	d.mutex.Lock()
	d.config = newConfig
	d.configPath = configPath
	d.mutex.Unlock()

	// Listener and broker settings only change on restart
	d.logger.Info().Msg("Configuration reloaded successfully")
	return nil
}
