package message

import (
	"encoding/binary"
	"fmt"
)

// Header sizes and limits
const (
	HeaderLen = 20
	Version   = 1

	// MaxMessageSize is the largest message accepted from a peer (1 MiB)
	MaxMessageSize = 1 << 20

	// maxLen is the largest length representable in the 24 bit length field
	maxLen = 1<<24 - 1
)

// Command flag bits
const (
	FlagRequest    uint8 = 0x80
	FlagProxiable  uint8 = 0x40
	FlagError      uint8 = 0x20
	FlagRetransmit uint8 = 0x10
)

// CommandCode identifies the command of a message (24 bit on the wire)
type CommandCode uint32

const (
	CommandCapabilitiesExchange CommandCode = 257
	CommandReAuth               CommandCode = 258
	CommandAccounting           CommandCode = 271
	CommandCreditControl        CommandCode = 272
	CommandAbortSession         CommandCode = 274
	CommandSessionTermination   CommandCode = 275
	CommandDeviceWatchdog       CommandCode = 280
	CommandDisconnectPeer       CommandCode = 282
)

var commandNames = map[CommandCode][2]string{
	CommandCapabilitiesExchange: {"CER", "CEA"},
	CommandReAuth:               {"RAR", "RAA"},
	CommandAccounting:           {"ACR", "ACA"},
	CommandCreditControl:        {"CCR", "CCA"},
	CommandAbortSession:         {"ASR", "ASA"},
	CommandSessionTermination:   {"STR", "STA"},
	CommandDeviceWatchdog:       {"DWR", "DWA"},
	CommandDisconnectPeer:       {"DPR", "DPA"},
}

// Name returns the abbreviation of the command, for example CER or CEA
func (c CommandCode) Name(request bool) string {
	names, ok := commandNames[c]
	if !ok {
		return fmt.Sprintf("Command(%d)", uint32(c))
	}
	if request {
		return names[0]
	}
	return names[1]
}

// ApplicationID identifies the Diameter application of a message
type ApplicationID uint32

const (
	ApplicationCommon        ApplicationID = 0
	ApplicationAccounting    ApplicationID = 3
	ApplicationCreditControl ApplicationID = 4
	ApplicationRelay         ApplicationID = 0xFFFFFFFF
)

// Header is the fixed 20 byte message header:
//
//	version (1) | length (3) | flags (1) | command code (3) |
//	application id (4) | hop-by-hop id (4) | end-to-end id (4)
type Header struct {
	Version       uint8
	Length        uint32
	Flags         uint8
	CommandCode   CommandCode
	ApplicationID ApplicationID
	HopByHopID    uint32
	EndToEndID    uint32
}

// encodeHeader writes h into b, which must hold at least HeaderLen bytes.
// The length argument replaces h.Length.
func encodeHeader(b []byte, h Header, length uint32) {
	version := h.Version
	if version == 0 {
		version = Version
	}
	binary.BigEndian.PutUint32(b[0:4], length)
	b[0] = version
	binary.BigEndian.PutUint32(b[4:8], uint32(h.CommandCode))
	b[4] = h.Flags
	binary.BigEndian.PutUint32(b[8:12], uint32(h.ApplicationID))
	binary.BigEndian.PutUint32(b[12:16], h.HopByHopID)
	binary.BigEndian.PutUint32(b[16:20], h.EndToEndID)
}

// decodeHeader reads the fixed header from b, which must hold at least HeaderLen bytes
func decodeHeader(b []byte) Header {
	return Header{
		Version:       b[0],
		Length:        binary.BigEndian.Uint32(b[0:4]) & maxLen,
		Flags:         b[4],
		CommandCode:   CommandCode(binary.BigEndian.Uint32(b[4:8]) & maxLen),
		ApplicationID: ApplicationID(binary.BigEndian.Uint32(b[8:12])),
		HopByHopID:    binary.BigEndian.Uint32(b[12:16]),
		EndToEndID:    binary.BigEndian.Uint32(b[16:20]),
	}
}
