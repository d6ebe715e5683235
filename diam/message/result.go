package message

import "github.com/ValentinKolb/dDiam/diam/avp"

// Frequently used Result-Code values
const (
	ResultSuccess                uint32 = 2001
	ResultLimitedSuccess         uint32 = 2002
	ResultUnableToDeliver        uint32 = 3002
	ResultTooBusy                uint32 = 3004
	ResultAuthenticationRejected uint32 = 4001
	ResultAVPUnsupported         uint32 = 5001
	ResultUnknownSessionID       uint32 = 5002
	ResultMissingAVP             uint32 = 5005
	ResultNoCommonApplication    uint32 = 5010
	ResultUnableToComply         uint32 = 5012
)

// ResultCode returns the Result-Code of an answer, falling back to the
// Experimental-Result-Code nested in Experimental-Result
func ResultCode(m *Message) (uint32, bool) {
	if a, ok := m.FindAVP(avp.CodeResultCode); ok {
		if v, ok := a.Value.(avp.Unsigned32); ok {
			return uint32(v), true
		}
	}

	if a, ok := m.FindAVP(avp.CodeExperimentalResult); ok {
		if group, ok := a.Value.(avp.Grouped); ok {
			if code, ok := group.Find(avp.CodeExperimentalResultCode); ok {
				if v, ok := code.Value.(avp.Unsigned32); ok {
					return uint32(v), true
				}
			}
		}
	}
	return 0, false
}

// IsSuccess reports whether a result code belongs to the 2xxx success class
func IsSuccess(code uint32) bool {
	return code >= 2000 && code < 3000
}
