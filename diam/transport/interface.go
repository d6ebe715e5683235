package transport

import (
	"context"
	"github.com/ValentinKolb/dDiam/diam/common"
	"net"
)

// --------------------------------------------------------------------------
// Client Connector
// --------------------------------------------------------------------------

// IClientConnector defines the transport specific part of establishing a client
// connection. The multiplexer owns the returned connection; the connector only
// dials it and applies socket options.
type IClientConnector interface {
	// Dial establishes a single stream connection to the endpoint.
	// The dial is aborted when ctx is done.
	Dial(ctx context.Context, endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// --------------------------------------------------------------------------
// Server Connector
// --------------------------------------------------------------------------

// IServerConnector creates listeners for the simulated peer used in tests and
// local experiments. A Diameter server is not part of this module.
type IServerConnector interface {
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// Listen opens a listener on the endpoint
	Listen(endpoint string) (net.Listener, error)
}
