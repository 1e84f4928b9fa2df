package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tvremote/internal/hub"
	"tvremote/internal/logger"
)

var (
	hubConfigPath string
	hubDebugFlag  bool
	hubTestFlag   bool
	tokenUser     string
)

var hubCmd = &cobra.Command{
	Use:   "hub",
	Short: "Start the tvremote hub daemon",
	Long: `The hub sets up a remote entity for every television in its configuration file
and serves the remote services over an HTTP API and, when enabled, MQTT.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetSilentMode(false)
		if hubDebugFlag {
			logger.SetLevel(logger.LOG_DEBUG)
		} else {
			logger.SetLevel(logger.LOG_INFO)
		}

		log := logger.ForComponent("cmd")
		log.Info().
			Str("config_path", hubConfigPath).
			Bool("debug", hubDebugFlag).
			Bool("test", hubTestFlag).
			Msg("Starting tvremote hub")

		if _, err := os.Stat(hubConfigPath); os.IsNotExist(err) {
			if err := hub.SaveConfig(hub.NewDefaultConfig(), hubConfigPath); err != nil {
				log.Error().Err(err).Msg("Failed to create default config file")
				return fmt.Errorf("failed to create default config file: %w", err)
			}
			log.Info().
				Str("config_path", hubConfigPath).
				Msg("Created default configuration file. Please edit it with your settings.")
			return nil
		}

		config, err := hub.LoadConfig(hubConfigPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load hub config")
			return fmt.Errorf("failed to create hub daemon: %w", err)
		}

		if config.Log.File != "" {
			logFile := logger.AddFileOutput(logger.FileOptions{
				Path:       config.Log.File,
				MaxSizeMB:  config.Log.MaxSizeMB,
				MaxBackups: config.Log.MaxBackups,
				MaxAgeDays: config.Log.MaxAgeDays,
			})
			defer logFile.Close()
		}

		daemon := hub.NewDaemonWithConfig(config, hubConfigPath, hubDebugFlag, hubTestFlag)

		// Blocks until shutdown
		if err := daemon.Start(withContext(cmd)); err != nil {
			log.Error().Err(err).Msg("Hub daemon stopped with error")
			return fmt.Errorf("hub daemon error: %w", err)
		}

		return nil
	},
}

var hubConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hub configuration",
	Long:  `Generate or validate hub configuration files.`,
}

var hubConfigGenerateCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a default configuration file with example settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := hubConfigPath
		if len(args) > 0 {
			configPath = args[0]
		}

		if err := hub.SaveConfig(hub.NewDefaultConfig(), configPath); err != nil {
			return fmt.Errorf("failed to save default config: %w", err)
		}

		cmd.Printf("Default configuration saved to: %s\n", configPath)
		cmd.Println("Please edit the file with your actual television settings.")
		return nil
	},
}

var hubConfigValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate a hub configuration file for syntax and required fields.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := hubConfigPath
		if len(args) > 0 {
			configPath = args[0]
		}

		config, err := hub.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		cmd.Printf("Configuration file is valid: %s\n", configPath)
		cmd.Printf("API listen address: %s\n", config.API.Listen)
		if config.MQTT.Enabled {
			cmd.Printf("MQTT broker: %s (prefix %s)\n", config.MQTT.Broker, config.MQTT.TopicPrefix)
		}
		cmd.Printf("Configured televisions: %d\n", len(config.Televisions))

		for _, tv := range config.Televisions {
			turnOn := "none"
			switch {
			case tv.TurnOnAction != nil:
				turnOn = tv.TurnOnAction.Type + " action"
			case tv.MAC != "":
				turnOn = "wake-on-lan"
			}
			cmd.Printf("  - %s (%s) at %s, turn on: %s\n", tv.ID, tv.Type, tv.Host, turnOn)
		}

		return nil
	},
}

var hubTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token",
	Long:  `Issue a bearer token for the hub API, signed with the configured JWT secret.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := hub.LoadConfig(hubConfigPath)
		if err != nil {
			return err
		}
		if config.API.JWTSecret == "" {
			return fmt.Errorf("api.jwt_secret is not set, the API runs without authentication")
		}

		jwtService := hub.NewJWTService(config.API.JWTSecret, config.API.JWTIssuer, config.API.TokenExpiryHours)
		token, err := jwtService.GenerateToken(tokenUser, config.Hub.ID)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}

		cmd.Println(token)
		return nil
	},
}

func init() {
	hubCmd.PersistentFlags().StringVarP(&hubConfigPath, "config", "c", "hub.yml", "Path to hub configuration file")
	hubCmd.Flags().BoolVarP(&hubDebugFlag, "debug", "d", false, "Enable debug logging")
	hubCmd.Flags().BoolVar(&hubTestFlag, "test", false, "Enable test mode (simulated televisions)")
	hubTokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "cli", "User the token is issued to")

	hubCmd.AddCommand(hubConfigCmd)
	hubCmd.AddCommand(hubTokenCmd)
	hubConfigCmd.AddCommand(hubConfigGenerateCmd)
	hubConfigCmd.AddCommand(hubConfigValidateCmd)
}

// withContext returns the command context, or a background one when unset
func withContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
