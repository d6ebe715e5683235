package util

import (
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/client"
	"github.com/ValentinKolb/dDiam/diam/common"
	"github.com/ValentinKolb/dDiam/diam/observability"
	"github.com/ValentinKolb/dDiam/diam/transport"
	"github.com/ValentinKolb/dDiam/diam/transport/tcp"
	"github.com/ValentinKolb/dDiam/diam/transport/unix"
	vm "github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by the CLI
	EnvPrefix = "ddiam"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Flags and configuration
// --------------------------------------------------------------------------

// SetupClientFlags adds the connection and identity flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	defaults := common.DefaultClientConfig()

	key := "endpoint"
	cmd.PersistentFlags().String(key, defaults.Endpoint, WrapString("The address of the Diameter peer (host:port for tcp, a socket path for unix)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, defaults.TimeoutSecond, WrapString("Connect timeout and per request timeout in seconds (0 disables both)"))

	key = "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer in KB (0 keeps the system default)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer in KB (0 keeps the system default)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, defaults.Transport.TCPNoDelay, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval in seconds (only for tcp, 0 disables keepalive)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, defaults.Transport.TCPLingerSec, WrapString("The linger time in seconds (only for tcp, negative keeps the system default)"))

	key = "origin-host"
	cmd.PersistentFlags().String(key, defaults.OriginHost, WrapString("Origin-Host announced in requests"))

	key = "origin-realm"
	cmd.PersistentFlags().String(key, defaults.OriginRealm, WrapString("Origin-Realm announced in requests"))

	key = "host-ip"
	cmd.PersistentFlags().String(key, defaults.HostIP, WrapString("Host-IP-Address announced in the capability exchange"))

	key = "dictionary"
	cmd.PersistentFlags().String(key, "", WrapString("Optional TOML file with additional attribute definitions"))
}

// InitClientConfig loads .env files and makes viper read DDIAM_* environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() common.ClientConfig {
	return common.ClientConfig{
		Endpoint:      viper.GetString("endpoint"),
		TimeoutSecond: viper.GetInt("timeout"),
		Transport: common.ClientTransportConfig{
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
			},
		},
		OriginHost:  viper.GetString("origin-host"),
		OriginRealm: viper.GetString("origin-realm"),
		HostIP:      viper.GetString("host-ip"),
		LogLevel:    viper.GetString("log-level"),
		LogFormat:   viper.GetString("log-format"),
	}
}

// GetClientConnector creates the client connector of the configured transport
func GetClientConnector() (transport.IClientConnector, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewClientConnector(), nil
	case "unix":
		return unix.NewClientConnector(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetServerConnector creates the server connector of the configured transport
func GetServerConnector() (transport.IServerConnector, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewServerConnector(), nil
	case "unix":
		return unix.NewServerConnector(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetDictionary returns the default dictionary extended by the --dictionary file
func GetDictionary() (*avp.Dictionary, error) {
	path := viper.GetString("dictionary")
	if path == "" {
		return avp.DefaultDictionary(), nil
	}
	return avp.LoadDictionaryFile(path)
}

// GetEventSink builds the event sink of the CLI: structured zerolog output for
// --log-format json, the dragonboat logger otherwise, plus metrics when a set
// is given
func GetEventSink(config common.ClientConfig, set *vm.Set) client.EventSink {
	var logSink client.EventSink
	if config.LogFormat == "json" {
		zl := observability.NewZerolog("ddiam", "json", os.Stderr)
		if level, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			zl = zl.Level(level)
		}
		logSink = observability.NewZerologSink(zl)
	} else {
		logSink = observability.NewLoggerSink(logger.GetLogger(common.LoggerClient))
	}

	if set == nil {
		return logSink
	}
	return observability.Multi(logSink, observability.NewMetricsSink(set))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
