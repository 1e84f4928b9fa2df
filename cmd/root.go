package cmd

import (
	"github.com/spf13/cobra"
	"tvremote/internal/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tvremote",
	Short: "tvremote - remote control for networked televisions",
	Long: `tvremote exposes networked televisions as remote-control entities.
It runs a hub that serves turn on, turn off and send command over HTTP and MQTT,
and includes commands and an interactive TUI for driving a television directly.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetSilentMode(false)
			logger.SetLevel(logger.LOG_DEBUG)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(cliCmd)
	rootCmd.AddCommand(hubCmd)
	rootCmd.AddCommand(remoteCmd)
}
