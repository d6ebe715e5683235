// Package common provides configuration structures and logging utilities
// shared by the dDiam packages.
//
// Key Components:
//
//   - ClientConfig: Settings for one Diameter client connection, including the
//     endpoint, the dial timeout, socket options and the local identity used
//     in capability exchange.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's logger
//     factory and keeps the `LEVEL | package | message` line format.
package common
