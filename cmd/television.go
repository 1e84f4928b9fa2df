package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"tvremote/internal/action"
	"tvremote/internal/cli"
	"tvremote/internal/hub"
)

var (
	tvName       string
	tvType       string
	tvHost       string
	tvCredential string
	tvMAC        string
	tvBroadcast  string
	tvModel      string
	tvWebhook    string
)

var tvCmd = &cobra.Command{
	Use:   "tv",
	Short: "Manage configured televisions",
}

var tvListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured televisions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tvs, err := cli.NewConfigManager(hubConfigPath).ListTelevisions()
		if err != nil {
			return err
		}
		for _, tv := range tvs {
			cmd.Printf("%-20s %-10s %-16s %s\n", tv.ID, tv.Type, tv.Host, tv.Name)
		}
		return nil
	},
}

var tvAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a television",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm := cli.NewConfigManager(hubConfigPath)

		tv := cm.CreateTelevisionTemplate(tvType)
		tv.ID = args[0]
		tv.Name = tvName
		if tvHost != "" {
			tv.Host = tvHost
		}
		if tvModel != "" {
			tv.Model = tvModel
		}
		tv.Credential = tvCredential
		tv.MAC = tvMAC
		tv.Broadcast = tvBroadcast
		if tvWebhook != "" {
			tv.TurnOnAction = &action.Config{Type: action.TypeWebhook, URL: tvWebhook}
		}

		if err := cm.BackupConfig(); err != nil {
			return fmt.Errorf("failed to back up config: %w", err)
		}
		if err := cm.AddTelevision(tv); err != nil {
			return err
		}

		cmd.Printf("Added television %s to %s\n", tv.ID, cm.GetConfigPath())
		return nil
	},
}

var tvRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a television",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm := cli.NewConfigManager(hubConfigPath)
		if err := cm.BackupConfig(); err != nil {
			return fmt.Errorf("failed to back up config: %w", err)
		}
		if err := cm.RemoveTelevision(args[0]); err != nil {
			return err
		}

		cmd.Printf("Removed television %s from %s\n", args[0], cm.GetConfigPath())
		return nil
	},
}

var hubConfigRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the configuration saved before the last change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cm := cli.NewConfigManager(hubConfigPath)
		if err := cm.RestoreFromBackup(); err != nil {
			return err
		}
		cmd.Printf("Restored %s from backup\n", cm.GetConfigPath())
		return nil
	},
}

func init() {
	tvAddCmd.Flags().StringVar(&tvName, "name", "", "Display name (defaults to the id)")
	tvAddCmd.Flags().StringVar(&tvType, "type", hub.BridgeBravia, "Bridge type (bravia, simulated)")
	tvAddCmd.Flags().StringVar(&tvHost, "host", "", "Television address")
	tvAddCmd.Flags().StringVar(&tvCredential, "credential", "", "Pre-shared key")
	tvAddCmd.Flags().StringVar(&tvMAC, "mac", "", "MAC address for wake-on-lan")
	tvAddCmd.Flags().StringVar(&tvBroadcast, "broadcast", "", "Wake-on-lan broadcast address, host:port")
	tvAddCmd.Flags().StringVar(&tvModel, "model", "", "Model name")
	tvAddCmd.Flags().StringVar(&tvWebhook, "turn-on-webhook", "", "URL called to turn the television on")

	tvCmd.AddCommand(tvListCmd)
	tvCmd.AddCommand(tvAddCmd)
	tvCmd.AddCommand(tvRemoveCmd)
	hubConfigCmd.AddCommand(tvCmd)
	hubConfigCmd.AddCommand(hubConfigRestoreCmd)
}
