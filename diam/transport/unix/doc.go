// Package unix implements Unix domain socket connectors for the Diameter client.
// They are useful when a local relay agent exposes Diameter on a socket file,
// and for tests that should not occupy a TCP port.
//
// Only the socket buffer sizes of common.ClientConfig apply to Unix sockets.
package unix
