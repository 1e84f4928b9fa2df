package hub_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tvremote/internal/action"
	"tvremote/internal/hub"
)

const sampleConfig = `
hub:
  id: hub_test
  name: Test Hub
api:
  listen: "127.0.0.1:9090"
  jwt_secret: secret
mqtt:
  enabled: true
  broker: mqtt://broker.local:1883
televisions:
  - id: living_room
    name: Living Room TV
    type: bravia
    host: 192.168.1.100
    credential: "0000"
    mac: "aa:bb:cc:dd:ee:ff"
    turn_on_action:
      type: service
      entity_id: remote.ir_blaster
      service: send_command
      command: [KEY_POWER]
  - id: bedroom
    type: simulated
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hub.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func validConfig() *hub.Config {
	cfg := &hub.Config{
		Hub: hub.HubConfig{ID: "hub_test"},
		Televisions: []hub.TelevisionConfig{
			{ID: "living_room", Name: "Living Room TV", Type: hub.BridgeSimulated},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses file and applies defaults", func(t *testing.T) {
		cfg, err := hub.LoadConfig(writeConfig(t, sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, "hub_test", cfg.Hub.ID)
		assert.Equal(t, "127.0.0.1:9090", cfg.API.Listen)
		assert.Equal(t, "tvremote", cfg.API.JWTIssuer)
		assert.Equal(t, 24, cfg.API.TokenExpiryHours)
		assert.Equal(t, "tvremote", cfg.MQTT.TopicPrefix)
		assert.Equal(t, "tvremote-hub_test", cfg.MQTT.ClientID)
		assert.Equal(t, uint16(20), cfg.MQTT.KeepAlive)

		require.Len(t, cfg.Televisions, 2)
		assert.Equal(t, "Living Room TV", cfg.Televisions[0].Name)
		assert.Equal(t, "bedroom", cfg.Televisions[1].Name)

		require.NotNil(t, cfg.Televisions[0].TurnOnAction)
		assert.Equal(t, action.TypeService, cfg.Televisions[0].TurnOnAction.Type)
		assert.Equal(t, []string{"KEY_POWER"}, cfg.Televisions[0].TurnOnAction.Command)
	})

	t.Run("environment overrides secrets", func(t *testing.T) {
		t.Setenv(hub.EnvJWTSecret, "from-env")
		t.Setenv(hub.EnvMQTTPassword, "mqtt-pass")

		cfg, err := hub.LoadConfig(writeConfig(t, sampleConfig))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.API.JWTSecret)
		assert.Equal(t, "mqtt-pass", cfg.MQTT.Password)
	})

	t.Run("log file gets rotation defaults", func(t *testing.T) {
		cfg, err := hub.LoadConfig(writeConfig(t, sampleConfig+"log:\n  file: /var/log/tvremote.log\n"))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Log.MaxSizeMB)
		assert.Equal(t, 3, cfg.Log.MaxBackups)
		assert.Equal(t, 28, cfg.Log.MaxAgeDays)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := hub.LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := hub.LoadConfig(writeConfig(t, "hub: [unterminated"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*hub.Config)
		wantErr string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *hub.Config) {},
		},
		{
			name:    "missing hub id",
			mutate:  func(c *hub.Config) { c.Hub.ID = "" },
			wantErr: "hub.id is required",
		},
		{
			name:    "no televisions",
			mutate:  func(c *hub.Config) { c.Televisions = nil },
			wantErr: "at least one television must be configured",
		},
		{
			name: "duplicate television id",
			mutate: func(c *hub.Config) {
				c.Televisions = append(c.Televisions, c.Televisions[0])
			},
			wantErr: "duplicate television ID: living_room",
		},
		{
			name:    "missing type",
			mutate:  func(c *hub.Config) { c.Televisions[0].Type = "" },
			wantErr: "televisions[0].type is required",
		},
		{
			name:    "unsupported type",
			mutate:  func(c *hub.Config) { c.Televisions[0].Type = "webos" },
			wantErr: `televisions[0].type "webos" is not supported`,
		},
		{
			name: "bravia without host",
			mutate: func(c *hub.Config) {
				c.Televisions[0].Type = hub.BridgeBravia
				c.Televisions[0].Credential = "0000"
			},
			wantErr: "televisions[0].host is required",
		},
		{
			name: "bravia without credential",
			mutate: func(c *hub.Config) {
				c.Televisions[0].Type = hub.BridgeBravia
				c.Televisions[0].Host = "192.168.1.100"
			},
			wantErr: "televisions[0].credential is required for bravia",
		},
		{
			name:    "bad mac",
			mutate:  func(c *hub.Config) { c.Televisions[0].MAC = "not-a-mac" },
			wantErr: "televisions[0].mac",
		},
		{
			name: "bad turn on action",
			mutate: func(c *hub.Config) {
				c.Televisions[0].TurnOnAction = &action.Config{Type: action.TypeWebhook}
			},
			wantErr: "televisions[0].turn_on_action: url is required for webhook action",
		},
		{
			name: "service action targeting its own television",
			mutate: func(c *hub.Config) {
				c.Televisions[0].TurnOnAction = &action.Config{
					Type:     action.TypeService,
					EntityID: "remote.living_room_tv",
					Service:  "turn_on",
				}
			},
			wantErr: "televisions[0].turn_on_action: service action cannot target remote.living_room_tv itself",
		},
		{
			name:    "mqtt without broker",
			mutate:  func(c *hub.Config) { c.MQTT.Enabled = true },
			wantErr: "mqtt.broker is required when mqtt is enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetTelevision(t *testing.T) {
	cfg := validConfig()

	tv, err := cfg.GetTelevision("living_room")
	require.NoError(t, err)
	assert.Equal(t, "Living Room TV", tv.Name)

	_, err = cfg.GetTelevision("kitchen")
	assert.EqualError(t, err, "television not found: kitchen")
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.yml")
	original := hub.NewDefaultConfig()
	require.NoError(t, original.Validate())
	require.NoError(t, hub.SaveConfig(original, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := hub.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original.Hub.ID, loaded.Hub.ID)
	assert.Equal(t, original.Televisions, loaded.Televisions)
}
