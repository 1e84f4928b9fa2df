package cmd

import (
	"github.com/spf13/cobra"
	"tvremote/cmd/cli"
	"tvremote/internal/logger"
)

var (
	debugFlag     bool
	testFlag      bool
	cliConfigPath string
	cliServerURL  string
	cliToken      string
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Start the interactive remote control",
	Long: `Launch the interactive Terminal User Interface (TUI) remote control.
Pick a television and drive it with the keyboard, either through a running hub
(--server) or with the televisions of --config set up in process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal; logs only in debug or test mode
		if debugFlag || testFlag {
			logger.SetSilentMode(false)
			if debugFlag {
				logger.SetLevel(logger.LOG_DEBUG)
			}
		} else {
			logger.SetSilentMode(true)
		}

		log := logger.ForComponent("cmd")
		log.Info().
			Bool("debug", debugFlag).
			Bool("test", testFlag).
			Str("server", cliServerURL).
			Msg("Starting remote control interface")

		caller, closeCaller, err := newCaller(cmd, cliConfigPath, cliServerURL, cliToken, testFlag)
		if err != nil {
			return err
		}
		defer closeCaller()

		if err := cli.StartTUI(caller, debugFlag, testFlag); err != nil {
			log.Error().Err(err).Msg("Failed to start TUI")
			return err
		}

		return nil
	},
}

func init() {
	cliCmd.Flags().BoolVar(&debugFlag, "debug", false, "Show call results in a log pane")
	cliCmd.Flags().BoolVar(&testFlag, "test", false, "Enable test mode (simulated televisions)")
	cliCmd.Flags().StringVarP(&cliConfigPath, "config", "c", "hub.yml", "Path to hub configuration file")
	cliCmd.Flags().StringVarP(&cliServerURL, "server", "s", "", "URL of a running hub")
	cliCmd.Flags().StringVarP(&cliToken, "token", "t", "", "Bearer token for the hub API")
}
