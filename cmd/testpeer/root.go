package testpeer

import (
	"github.com/ValentinKolb/dDiam/cmd/util"
	"github.com/ValentinKolb/dDiam/diam/common"
	simulated "github.com/ValentinKolb/dDiam/diam/testpeer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var (
	// TestPeerCmd starts the simulated peer
	TestPeerCmd = &cobra.Command{
		Use:   "testpeer",
		Short: "Start a simulated Diameter peer",
		Long:  `Start a simulated Diameter peer that answers every request with the configured Result-Code. It is meant for trying the peer commands locally, not as a Diameter server. The configuration can be set via command line flags or environment variables (e.g. DDIAM_RESULT_CODE=3004)`,
		Args:  cobra.NoArgs,
		RunE:  run,
	}
)

func init() {
	key := "endpoint"
	TestPeerCmd.Flags().String(key, "127.0.0.1:3868", util.WrapString("The address on which the peer will listen (e.g. 127.0.0.1:3868, /tmp/ddiam.sock)"))

	key = "result-code"
	TestPeerCmd.Flags().Uint32(key, 2001, util.WrapString("Result-Code sent in every answer"))

	key = "workers"
	TestPeerCmd.Flags().Int(key, 16, util.WrapString("Number of requests handled concurrently per connection (0 answers in arrival order)"))

	key = "dictionary"
	TestPeerCmd.Flags().String(key, "", util.WrapString("Optional TOML file with additional attribute definitions"))
}

// run starts the peer and blocks until SIGINT or SIGTERM
func run(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	connector, err := util.GetServerConnector()
	if err != nil {
		return err
	}

	dict, err := util.GetDictionary()
	if err != nil {
		return err
	}

	peer := simulated.New(
		connector,
		simulated.AnswerAll(viper.GetUint32("result-code")),
		simulated.WithWorkers(viper.GetInt("workers")),
		simulated.WithDictionary(dict),
	)
	if err := peer.Start(viper.GetString("endpoint")); err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	simulated.Logger.Infof("Shutting down")
	return peer.Close()
}
