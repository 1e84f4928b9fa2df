package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"tvremote/internal/hub"
	"tvremote/internal/remote"
)

var (
	remoteConfigPath string
	remoteServerURL  string
	remoteToken      string
	remoteTestFlag   bool
	remoteRepeats    int
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Call remote services on a television",
	Long: `Call turn on, turn off or send command on a remote entity.
With --server the call goes to a running hub; otherwise the televisions of
--config are set up in process.`,
}

var remoteTurnOnCmd = &cobra.Command{
	Use:   "turn-on <entity>",
	Short: "Turn a television on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemote(cmd, remote.ServiceTurnOn, hub.ServiceRequest{EntityID: entityArg(args[0])})
	},
}

var remoteTurnOffCmd = &cobra.Command{
	Use:   "turn-off <entity>",
	Short: "Turn a television off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemote(cmd, remote.ServiceTurnOff, hub.ServiceRequest{EntityID: entityArg(args[0])})
	},
}

var remoteSendCmd = &cobra.Command{
	Use:   "send <entity> <key>...",
	Short: "Send remote keys to a television",
	Long: `Send one or more remote keys, e.g. KEY_VOLUP or volup. The whole key list
is sent --repeats times.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repeats := remoteRepeats
		return runRemote(cmd, remote.ServiceSendCommand, hub.ServiceRequest{
			EntityID:   entityArg(args[0]),
			Command:    args[1:],
			NumRepeats: &repeats,
		})
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote entities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, closeCaller, err := newCaller(cmd, remoteConfigPath, remoteServerURL, remoteToken, remoteTestFlag)
		if err != nil {
			return err
		}
		defer closeCaller()

		entities, err := caller.Entities(withContext(cmd))
		if err != nil {
			return err
		}
		for _, e := range entities {
			cmd.Printf("%-30s %s\n", e.EntityID, e.Name)
		}
		return nil
	},
}

func runRemote(cmd *cobra.Command, service remote.Service, req hub.ServiceRequest) error {
	caller, closeCaller, err := newCaller(cmd, remoteConfigPath, remoteServerURL, remoteToken, remoteTestFlag)
	if err != nil {
		return err
	}
	defer closeCaller()

	resp, err := caller.Call(withContext(cmd), service, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s failed: %s", service, resp.Error)
	}

	cmd.Printf("%s on %s succeeded (context %s)\n", service, resp.EntityID, resp.ContextID)
	return nil
}

// entityArg accepts either a full entity id or its object id
func entityArg(arg string) string {
	if strings.Contains(arg, ".") {
		return arg
	}
	return remote.Domain + "." + arg
}

// newCaller returns a hub client when a server is given, otherwise an
// entry manager set up from the configuration file
func newCaller(cmd *cobra.Command, configPath, serverURL, token string, testMode bool) (hub.Caller, func(), error) {
	if serverURL != "" {
		return hub.NewClient(serverURL, hub.WithToken(token)), func() {}, nil
	}

	config, err := hub.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	manager := hub.NewEntryManager(config, testMode)
	if err := manager.Initialize(withContext(cmd)); err != nil {
		manager.Shutdown()
		return nil, nil, err
	}
	return &hub.LocalCaller{Manager: manager, UserID: "cli"}, manager.Shutdown, nil
}

func init() {
	remoteCmd.PersistentFlags().StringVarP(&remoteConfigPath, "config", "c", "hub.yml", "Path to hub configuration file")
	remoteCmd.PersistentFlags().StringVarP(&remoteServerURL, "server", "s", "", "URL of a running hub, e.g. http://localhost:8081")
	remoteCmd.PersistentFlags().StringVarP(&remoteToken, "token", "t", "", "Bearer token for the hub API")
	remoteCmd.PersistentFlags().BoolVar(&remoteTestFlag, "test", false, "Enable test mode (simulated televisions)")
	remoteSendCmd.Flags().IntVarP(&remoteRepeats, "repeats", "r", remote.DefaultNumRepeats, "Number of times the key list is sent")

	remoteCmd.AddCommand(remoteTurnOnCmd)
	remoteCmd.AddCommand(remoteTurnOffCmd)
	remoteCmd.AddCommand(remoteSendCmd)
	remoteCmd.AddCommand(remoteListCmd)
}
