package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Client configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings applied after dialing
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket settings
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig groups all transport level settings of a client
type ClientTransportConfig struct {
	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters for a Diameter client connection.
// The client never enforces request timeouts: TimeoutSecond only bounds the dial.
type ClientConfig struct {
	// Endpoint is the address of the Diameter peer (host:port or a unix socket path)
	Endpoint string

	// TimeoutSecond bounds connection establishment (0 disables the bound)
	TimeoutSecond int

	// Transport holds the socket settings
	Transport ClientTransportConfig

	// Local identity announced in capability exchange
	OriginHost  string
	OriginRealm string
	HostIP      string

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// DefaultClientConfig returns a configuration with the defaults used by the CLI
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint:      "localhost:3868",
		TimeoutSecond: 10,
		Transport: ClientTransportConfig{
			TCPConf: TCPConf{
				TCPNoDelay:   true,
				TCPLingerSec: -1,
			},
		},
		OriginHost:  "ddiam.localdomain",
		OriginRealm: "localdomain",
		HostIP:      "127.0.0.1",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Dial Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Identity")
	addField("Origin-Host", c.OriginHost)
	addField("Origin-Realm", c.OriginRealm)
	addField("Host-IP-Address", c.HostIP)

	addSection("Socket")
	addField("TCP NoDelay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Log Format", c.LogFormat)

	return sb.String()
}
