// Package client implements the connection multiplexer of dDiam: many
// concurrent requests share one Diameter connection and each answer is routed
// to its request by hop-by-hop id, regardless of the order in which answers
// arrive.
//
// Key Components:
//
//   - Client: Owns one connection at a time. Connect dials through a
//     transport.IClientConnector, applies the socket settings and starts exactly
//     one reader goroutine. Request registers a message in the pending table and
//     returns its handle; SendMessage combines registration, send and wait.
//
//   - Request: The handle of one registered request. Send writes the message,
//     Response waits for the answer exactly once, Cancel drops the registration.
//
//   - EventSink: Receives connection events (answers delivered or unmatched,
//     cancellations, faults). The client never logs on its own; see the
//     observability package for sinks.
//
// Concurrency:
//
// The pending table (an xsync.MapOf keyed by hop-by-hop id) and the writer are
// locked independently and no lock is held while waiting for an answer. A write
// holds the write mutex for exactly one Write call of a fully encoded message.
//
// Failure handling:
//
// Any read or decode error, including a declared length above 1 MiB, faults
// the connection: the socket is closed, every pending request fails with a
// *FaultError (matching ErrConnectionFaulted and the cause), Done is closed and
// later requests are refused. A write error faults the connection as well. Close
// fails pending requests with ErrClosed. The client never retries, reconnects
// automatically or enforces request timeouts; callers pass contexts instead.
//
// Identifiers are the caller's responsibility: a request whose hop-by-hop id is
// already pending replaces the earlier registration.
package client
