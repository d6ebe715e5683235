package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dDiam/cmd/peer"
	"github.com/ValentinKolb/dDiam/cmd/testpeer"
	"github.com/ValentinKolb/dDiam/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ddiam",
		Short: "multiplexed Diameter client",
		Long: fmt.Sprintf(`dDiam (v%s)

A Diameter client library and command line tool written in Go.
Many requests share one connection; answers are matched to their
requests by hop-by-hop id and may arrive in any order.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dDiam",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dDiam v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(peer.PeerCommands)
	RootCmd.AddCommand(testpeer.TestPeerCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("level at which logs will be output (debug, info, warn, error)"))
	key = "log-format"
	RootCmd.PersistentFlags().String(key, "text", util.WrapString("format of connection event logs (text, json)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
