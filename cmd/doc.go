// Package cmd implements the command-line interface of dDiam. It provides a
// hierarchical command structure for talking to a Diameter peer and for running
// a simulated peer locally.
//
// The package is organized into several subpackages:
//
//   - peer: Commands that send requests to a peer (cer, dwr, ccr, perf)
//   - testpeer: Command that starts the simulated peer
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set through DDIAM_<FLAG> environment variables or a
// .env file (e.g. DDIAM_ENDPOINT=peer.example.com:3868).
//
// See ddiam -help for a list of all commands.
package cmd
