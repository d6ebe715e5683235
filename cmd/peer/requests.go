package peer

import (
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/common"
	"github.com/ValentinKolb/dDiam/diam/message"
	"strings"
	"time"
)

const (
	productName = "dDiam"
	firmware    = 3
)

// CC-Request-Type values (RFC 4006)
var ccRequestTypes = map[string]avp.Enumerated{
	"initial":   1,
	"update":    2,
	"terminate": 3,
	"event":     4,
}

// ccrParams holds the Credit-Control specific request values
type ccrParams struct {
	sessionID        string
	destinationRealm string
	serviceContext   string
	requestType      string
	requestNumber    uint32
	subscriptionID   string
}

// requestBuilder creates requests carrying the local identity of the configuration
type requestBuilder struct {
	config        common.ClientConfig
	ids           *message.IDGenerator
	originStateID uint32
}

func newRequestBuilder(config common.ClientConfig) *requestBuilder {
	return &requestBuilder{
		config:        config,
		ids:           message.NewIDGenerator(),
		originStateID: uint32(time.Now().Unix()),
	}
}

func (b *requestBuilder) new(cmd message.CommandCode, app message.ApplicationID, flags uint8) *message.Message {
	return message.New(cmd, app, message.FlagRequest|flags, b.ids.NextHopByHop(), b.ids.NextEndToEnd())
}

func (b *requestBuilder) origin() []*avp.AVP {
	return []*avp.AVP{
		avp.New(avp.CodeOriginHost, 0, avp.DiameterIdentity(b.config.OriginHost), true),
		avp.New(avp.CodeOriginRealm, 0, avp.DiameterIdentity(b.config.OriginRealm), true),
	}
}

// CER announces the local identity and the supported applications
func (b *requestBuilder) CER() (*message.Message, error) {
	hostIP, err := avp.ParseAddress(b.config.HostIP)
	if err != nil {
		return nil, fmt.Errorf("invalid host ip %q: %w", b.config.HostIP, err)
	}

	m := b.new(message.CommandCapabilitiesExchange, message.ApplicationCommon, 0)
	m.Add(b.origin()...)
	m.Add(
		avp.New(avp.CodeHostIPAddress, 0, hostIP, true),
		avp.New(avp.CodeVendorID, 0, avp.Unsigned32(0), true),
		avp.New(avp.CodeProductName, 0, avp.UTF8String(productName), false),
		avp.New(avp.CodeOriginStateID, 0, avp.Unsigned32(b.originStateID), true),
		avp.New(avp.CodeAuthApplicationID, 0, avp.Unsigned32(message.ApplicationCreditControl), true),
		avp.New(avp.CodeFirmwareRevision, 0, avp.Unsigned32(firmware), false),
	)
	return m, nil
}

// DWR is the watchdog request
func (b *requestBuilder) DWR() *message.Message {
	m := b.new(message.CommandDeviceWatchdog, message.ApplicationCommon, 0)
	m.Add(b.origin()...)
	m.Add(avp.New(avp.CodeOriginStateID, 0, avp.Unsigned32(b.originStateID), true))
	return m
}

// CCR builds a Credit-Control-Request. A missing session id is generated.
func (b *requestBuilder) CCR(p ccrParams) (*message.Message, error) {
	requestType, ok := ccRequestTypes[strings.ToLower(p.requestType)]
	if !ok {
		return nil, fmt.Errorf("invalid request type %q (expected initial, update, terminate, event)", p.requestType)
	}

	sessionID := p.sessionID
	if sessionID == "" {
		sessionID = message.NewSessionID(b.config.OriginHost)
	}

	m := b.new(message.CommandCreditControl, message.ApplicationCreditControl, message.FlagProxiable)
	m.Add(avp.New(avp.CodeSessionID, 0, avp.UTF8String(sessionID), true))
	m.Add(b.origin()...)
	m.Add(
		avp.New(avp.CodeDestinationRealm, 0, avp.DiameterIdentity(p.destinationRealm), true),
		avp.New(avp.CodeAuthApplicationID, 0, avp.Unsigned32(message.ApplicationCreditControl), true),
		avp.New(avp.CodeServiceContextID, 0, avp.UTF8String(p.serviceContext), true),
		avp.New(avp.CodeCCRequestType, 0, requestType, true),
		avp.New(avp.CodeCCRequestNumber, 0, avp.Unsigned32(p.requestNumber), true),
		avp.New(avp.CodeEventTimestamp, 0, avp.NewTime(time.Now()), true),
	)

	if p.subscriptionID != "" {
		// Subscription-Id-Type 0 is END_USER_E164
		m.Add(avp.New(avp.CodeSubscriptionID, 0, avp.Grouped{
			avp.New(avp.CodeSubscriptionIDType, 0, avp.Enumerated(0), true),
			avp.New(avp.CodeSubscriptionIDData, 0, avp.UTF8String(p.subscriptionID), true),
		}, true))
	}
	return m, nil
}
