// Package transport defines the connector abstraction the Diameter client uses
// to obtain stream connections, independent of the socket type.
//
// Key Components:
//
//   - IClientConnector: Dials an endpoint and applies socket options (TCP no-delay,
//     keep-alive, linger, buffer sizes) from common.ClientConfig. Implemented by
//     the tcp and unix sub packages.
//
//   - IServerConnector: Opens listeners for the simulated peer used in tests.
//
// Diameter itself only mandates a reliable ordered byte stream (RFC 6733 runs it
// over TCP or SCTP); message framing happens in the message package, so
// connectors never look at the bytes they carry.
package transport
