// Package tcp implements TCP socket connectors for the Diameter client.
//
// Key Components:
//
//   - clientConnector: TCP implementation of transport.IClientConnector. After
//     dialing, UpgradeConnection applies no-delay, keep-alive, linger and the
//     socket buffer sizes from common.ClientConfig.
//
//   - serverConnector: TCP implementation of transport.IServerConnector, used by
//     the simulated peer in tests.
//
// 3868 is the registered Diameter port and the default endpoint of the CLI.
package tcp
