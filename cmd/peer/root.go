package peer

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dDiam/cmd/util"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/client"
	"github.com/ValentinKolb/dDiam/diam/common"
	"github.com/ValentinKolb/dDiam/diam/message"
	vm "github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"time"
)

var (
	Logger = logger.GetLogger(common.LoggerCmd)

	peerClient  *client.Client
	peerConfig  common.ClientConfig
	peerDict    *avp.Dictionary
	peerBuilder *requestBuilder
	peerMetrics = vm.NewSet()

	// PeerCommands represents the peer command group
	PeerCommands = &cobra.Command{
		Use:                "peer",
		Short:              "Send requests to a Diameter peer",
		PersistentPreRunE:  setupPeerClient,
		PersistentPostRunE: closePeerClient,
	}
)

func init() {
	// Add common connection flags to the peer command
	util.SetupClientFlags(PeerCommands)

	key := "skip-cer"
	PeerCommands.PersistentFlags().Bool(key, false, util.WrapString("Do not send a Capabilities-Exchange-Request after connecting (for peers that do not expect one)"))

	// Add subcommands
	PeerCommands.AddCommand(cerCmd)
	PeerCommands.AddCommand(dwrCmd)
	PeerCommands.AddCommand(ccrCmd)
	PeerCommands.AddCommand(perfTestCmd)
}

// setupPeerClient connects the client used by all peer commands
func setupPeerClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	peerConfig = util.GetClientConfig()
	if err := common.InitLoggers(peerConfig.LogLevel); err != nil {
		return err
	}
	Logger.Debugf("Configuration:\n%s", peerConfig.String())

	connector, err := util.GetClientConnector()
	if err != nil {
		return err
	}

	peerDict, err = util.GetDictionary()
	if err != nil {
		return err
	}

	peerBuilder = newRequestBuilder(peerConfig)
	peerClient = client.NewClient(
		connector,
		peerConfig,
		client.WithEventSink(util.GetEventSink(peerConfig, peerMetrics)),
		client.WithDictionary(peerDict),
	)

	ctx, cancel := requestContext()
	defer cancel()
	if err := peerClient.Connect(ctx, peerConfig.Endpoint); err != nil {
		return err
	}

	// the cer command sends its own capability exchange
	skip, _ := cmd.Flags().GetBool("skip-cer")
	if skip || cmd == cerCmd {
		return nil
	}

	cer, err := peerBuilder.CER()
	if err != nil {
		return err
	}
	ans, err := peerClient.SendMessage(ctx, cer)
	if err != nil {
		return fmt.Errorf("capability exchange failed: %w", err)
	}
	if code, ok := message.ResultCode(ans); !ok || !message.IsSuccess(code) {
		return fmt.Errorf("capability exchange rejected with Result-Code %d", code)
	}
	return nil
}

// closePeerClient closes the connection after the command ran
func closePeerClient(_ *cobra.Command, _ []string) error {
	if peerClient != nil {
		return peerClient.Close()
	}
	return nil
}

// requestContext bounds a single exchange with the configured timeout
func requestContext() (context.Context, context.CancelFunc) {
	if peerConfig.TimeoutSecond > 0 {
		return context.WithTimeout(context.Background(), time.Duration(peerConfig.TimeoutSecond)*time.Second)
	}
	return context.WithCancel(context.Background())
}
