// Package testpeer implements a simulated Diameter peer for tests and local
// experiments with the CLI.
//
// The peer accepts connections through a transport.IServerConnector, reads
// messages with the message framer and hands each request to a HandlerFunc
// together with its Session. Because handlers write through the session they
// can answer out of order, answer with ids nobody asked for, send corrupt or
// oversized frames, or hang up, which is what the client tests need.
//
// Handlers run inline in the order requests arrive unless WithWorkers enables a
// bounded number of concurrent handler calls per session.
package testpeer
