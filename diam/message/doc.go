// Package message implements the Diameter message envelope and the framing of
// messages on a byte stream.
//
// A message is a fixed 20 byte header followed by attribute records until the
// declared length is exhausted. Framing relies purely on the 24 bit length in
// the first four bytes of every message; there is no delimiter scanning.
//
// Key Components:
//
//   - Message/Header: The message model with command code, application id,
//     flags, hop-by-hop id (the correlation id) and end-to-end id.
//
//   - ReadMessage/WriteMessage: The framer. Reading rejects declared lengths
//     above MaxMessageSize (1 MiB) before allocating, and every attribute must
//     end inside the message. Writing computes the length field from the
//     attributes and emits the whole message with a single Write call.
//
//   - IDGenerator/NewSessionID: Helpers for callers that build requests. The
//     client package never generates identifiers itself.
package message
