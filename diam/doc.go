// Package diam is the root of the dDiam library, a Diameter (RFC 6733) client
// that multiplexes many concurrent requests over a single stream connection.
//
// The library is split into the following packages:
//
//   - avp: Typed attribute values, the attribute record codec and the attribute
//     dictionary.
//   - message: The message header, the framer that reads and writes whole
//     messages on a byte stream, and identifier helpers.
//   - transport: The connector abstraction with tcp and unix implementations.
//   - client: The connection multiplexer and the per request handle.
//   - observability: Event sinks for logging and metrics.
//   - testpeer: A simulated peer for tests.
//   - common: Configuration and the logger factory shared by all packages.
//
// Usage:
//
//	c := client.NewClient(tcp.NewClientConnector(), common.DefaultClientConfig())
//	if err := c.Connect(ctx, "peer.example.com:3868"); err != nil {
//		return err
//	}
//	defer c.Close()
//
//	ids := message.NewIDGenerator()
//	req := message.New(message.CommandDeviceWatchdog, message.ApplicationCommon,
//		message.FlagRequest, ids.NextHopByHop(), ids.NextEndToEnd())
//	ans, err := c.SendMessage(ctx, req)
package diam
