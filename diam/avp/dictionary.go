package avp

import (
	"fmt"
	"github.com/BurntSushi/toml"
	"os"
	"sync"
)

// Codes of the base protocol and credit-control attributes known to the default dictionary
const (
	CodeUserName                    uint32 = 1
	CodeProxyState                  uint32 = 33
	CodeEventTimestamp              uint32 = 55
	CodeHostIPAddress               uint32 = 257
	CodeAuthApplicationID           uint32 = 258
	CodeAcctApplicationID           uint32 = 259
	CodeVendorSpecificApplicationID uint32 = 260
	CodeSessionID                   uint32 = 263
	CodeOriginHost                  uint32 = 264
	CodeSupportedVendorID           uint32 = 265
	CodeVendorID                    uint32 = 266
	CodeFirmwareRevision            uint32 = 267
	CodeResultCode                  uint32 = 268
	CodeProductName                 uint32 = 269
	CodeDisconnectCause             uint32 = 273
	CodeAuthSessionState            uint32 = 277
	CodeOriginStateID               uint32 = 278
	CodeFailedAVP                   uint32 = 279
	CodeProxyHost                   uint32 = 280
	CodeErrorMessage                uint32 = 281
	CodeRouteRecord                 uint32 = 282
	CodeDestinationRealm            uint32 = 283
	CodeProxyInfo                   uint32 = 284
	CodeReAuthRequestType           uint32 = 285
	CodeDestinationHost             uint32 = 293
	CodeErrorReportingHost          uint32 = 294
	CodeTerminationCause            uint32 = 295
	CodeOriginRealm                 uint32 = 296
	CodeExperimentalResult          uint32 = 297
	CodeExperimentalResultCode      uint32 = 298
	CodeInbandSecurityID            uint32 = 299
	CodeCCInputOctets               uint32 = 412
	CodeCCOutputOctets              uint32 = 414
	CodeCCRequestNumber             uint32 = 415
	CodeCCRequestType               uint32 = 416
	CodeCCTime                      uint32 = 420
	CodeCCTotalOctets               uint32 = 421
	CodeGrantedServiceUnit          uint32 = 431
	CodeRatingGroup                 uint32 = 432
	CodeRequestedServiceUnit        uint32 = 437
	CodeServiceIdentifier           uint32 = 439
	CodeSubscriptionID              uint32 = 443
	CodeSubscriptionIDData          uint32 = 444
	CodeUsedServiceUnit             uint32 = 446
	CodeValidityTime                uint32 = 448
	CodeSubscriptionIDType          uint32 = 450
	CodeMultipleServicesIndicator   uint32 = 455
	CodeMultipleServicesCC          uint32 = 456
	CodeServiceContextID            uint32 = 461
)

// Definition describes one attribute known to a dictionary
type Definition struct {
	Code     uint32
	VendorID uint32
	Name     string
	Type     Type
}

type definitionKey struct {
	code   uint32
	vendor uint32
}

// Dictionary maps attribute codes to names and value types.
// A dictionary must not be modified while messages are decoded with it.
type Dictionary struct {
	defs map[definitionKey]Definition
}

var (
	defaultDict     *Dictionary
	defaultDictOnce sync.Once
)

// DefaultDictionary returns the shared dictionary of base protocol and
// credit-control attributes. It must be treated as read-only; use
// NewDictionary to obtain a modifiable copy.
func DefaultDictionary() *Dictionary {
	defaultDictOnce.Do(func() {
		defaultDict = &Dictionary{defs: make(map[definitionKey]Definition)}
		for _, d := range baseDefinitions {
			defaultDict.Add(d)
		}
	})
	return defaultDict
}

// NewDictionary returns a modifiable dictionary pre-filled with the default definitions
func NewDictionary() *Dictionary {
	base := DefaultDictionary()
	d := &Dictionary{defs: make(map[definitionKey]Definition, len(base.defs))}
	for k, v := range base.defs {
		d.defs[k] = v
	}
	return d
}

// Add registers or replaces a definition
func (d *Dictionary) Add(def Definition) {
	d.defs[definitionKey{def.Code, def.VendorID}] = def
}

// Lookup returns the definition of an attribute
func (d *Dictionary) Lookup(code, vendorID uint32) (Definition, bool) {
	def, ok := d.defs[definitionKey{code, vendorID}]
	return def, ok
}

// TypeOf returns the value type of an attribute, unknown attributes are OctetString
func (d *Dictionary) TypeOf(code, vendorID uint32) Type {
	if def, ok := d.Lookup(code, vendorID); ok {
		return def.Type
	}
	return TypeOctetString
}

// Name returns the attribute name or a placeholder for unknown attributes
func (d *Dictionary) Name(code, vendorID uint32) string {
	if def, ok := d.Lookup(code, vendorID); ok {
		return def.Name
	}
	return fmt.Sprintf("Unknown-AVP-%d", code)
}

// Len returns the number of definitions
func (d *Dictionary) Len() int {
	return len(d.defs)
}

// --------------------------------------------------------------------------
// Dictionary files
// --------------------------------------------------------------------------

// dictionaryFile is the TOML layout of a dictionary extension:
//
//	[[avp]]
//	code = 1032
//	vendor = 10415
//	name = "RAT-Type"
//	type = "Enumerated"
type dictionaryFile struct {
	AVP []dictionaryEntry `toml:"avp"`
}

type dictionaryEntry struct {
	Code     uint32 `toml:"code"`
	VendorID uint32 `toml:"vendor"`
	Name     string `toml:"name"`
	Type     string `toml:"type"`
}

// ParseDictionary reads TOML definitions and merges them on top of the defaults
func ParseDictionary(text string) (*Dictionary, error) {
	var file dictionaryFile
	if _, err := toml.Decode(text, &file); err != nil {
		return nil, fmt.Errorf("avp: failed to parse dictionary: %w", err)
	}

	dict := NewDictionary()
	for i, entry := range file.AVP {
		t, err := ParseType(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("avp: dictionary entry %d (%s): %w", i, entry.Name, err)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("avp: dictionary entry %d (code %d) has no name", i, entry.Code)
		}
		dict.Add(Definition{Code: entry.Code, VendorID: entry.VendorID, Name: entry.Name, Type: t})
	}
	return dict, nil
}

// LoadDictionaryFile reads a TOML dictionary extension from disk
func LoadDictionaryFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDictionary(string(data))
}

// --------------------------------------------------------------------------
// Default definitions
// --------------------------------------------------------------------------

var baseDefinitions = []Definition{
	{Code: CodeUserName, Name: "User-Name", Type: TypeUTF8String},
	{Code: CodeProxyState, Name: "Proxy-State", Type: TypeOctetString},
	{Code: CodeEventTimestamp, Name: "Event-Timestamp", Type: TypeTime},
	{Code: CodeHostIPAddress, Name: "Host-IP-Address", Type: TypeAddress},
	{Code: CodeAuthApplicationID, Name: "Auth-Application-Id", Type: TypeUnsigned32},
	{Code: CodeAcctApplicationID, Name: "Acct-Application-Id", Type: TypeUnsigned32},
	{Code: CodeVendorSpecificApplicationID, Name: "Vendor-Specific-Application-Id", Type: TypeGrouped},
	{Code: CodeSessionID, Name: "Session-Id", Type: TypeUTF8String},
	{Code: CodeOriginHost, Name: "Origin-Host", Type: TypeDiameterIdentity},
	{Code: CodeSupportedVendorID, Name: "Supported-Vendor-Id", Type: TypeUnsigned32},
	{Code: CodeVendorID, Name: "Vendor-Id", Type: TypeUnsigned32},
	{Code: CodeFirmwareRevision, Name: "Firmware-Revision", Type: TypeUnsigned32},
	{Code: CodeResultCode, Name: "Result-Code", Type: TypeUnsigned32},
	{Code: CodeProductName, Name: "Product-Name", Type: TypeUTF8String},
	{Code: CodeDisconnectCause, Name: "Disconnect-Cause", Type: TypeEnumerated},
	{Code: CodeAuthSessionState, Name: "Auth-Session-State", Type: TypeEnumerated},
	{Code: CodeOriginStateID, Name: "Origin-State-Id", Type: TypeUnsigned32},
	{Code: CodeFailedAVP, Name: "Failed-AVP", Type: TypeGrouped},
	{Code: CodeProxyHost, Name: "Proxy-Host", Type: TypeDiameterIdentity},
	{Code: CodeErrorMessage, Name: "Error-Message", Type: TypeUTF8String},
	{Code: CodeRouteRecord, Name: "Route-Record", Type: TypeDiameterIdentity},
	{Code: CodeDestinationRealm, Name: "Destination-Realm", Type: TypeDiameterIdentity},
	{Code: CodeProxyInfo, Name: "Proxy-Info", Type: TypeGrouped},
	{Code: CodeReAuthRequestType, Name: "Re-Auth-Request-Type", Type: TypeEnumerated},
	{Code: CodeDestinationHost, Name: "Destination-Host", Type: TypeDiameterIdentity},
	{Code: CodeErrorReportingHost, Name: "Error-Reporting-Host", Type: TypeDiameterIdentity},
	{Code: CodeTerminationCause, Name: "Termination-Cause", Type: TypeEnumerated},
	{Code: CodeOriginRealm, Name: "Origin-Realm", Type: TypeDiameterIdentity},
	{Code: CodeExperimentalResult, Name: "Experimental-Result", Type: TypeGrouped},
	{Code: CodeExperimentalResultCode, Name: "Experimental-Result-Code", Type: TypeUnsigned32},
	{Code: CodeInbandSecurityID, Name: "Inband-Security-Id", Type: TypeUnsigned32},
	{Code: CodeCCInputOctets, Name: "CC-Input-Octets", Type: TypeUnsigned64},
	{Code: CodeCCOutputOctets, Name: "CC-Output-Octets", Type: TypeUnsigned64},
	{Code: CodeCCRequestNumber, Name: "CC-Request-Number", Type: TypeUnsigned32},
	{Code: CodeCCRequestType, Name: "CC-Request-Type", Type: TypeEnumerated},
	{Code: CodeCCTime, Name: "CC-Time", Type: TypeUnsigned32},
	{Code: CodeCCTotalOctets, Name: "CC-Total-Octets", Type: TypeUnsigned64},
	{Code: CodeGrantedServiceUnit, Name: "Granted-Service-Unit", Type: TypeGrouped},
	{Code: CodeRatingGroup, Name: "Rating-Group", Type: TypeUnsigned32},
	{Code: CodeRequestedServiceUnit, Name: "Requested-Service-Unit", Type: TypeGrouped},
	{Code: CodeServiceIdentifier, Name: "Service-Identifier", Type: TypeUnsigned32},
	{Code: CodeSubscriptionID, Name: "Subscription-Id", Type: TypeGrouped},
	{Code: CodeSubscriptionIDData, Name: "Subscription-Id-Data", Type: TypeUTF8String},
	{Code: CodeUsedServiceUnit, Name: "Used-Service-Unit", Type: TypeGrouped},
	{Code: CodeValidityTime, Name: "Validity-Time", Type: TypeUnsigned32},
	{Code: CodeSubscriptionIDType, Name: "Subscription-Id-Type", Type: TypeEnumerated},
	{Code: CodeMultipleServicesIndicator, Name: "Multiple-Services-Indicator", Type: TypeEnumerated},
	{Code: CodeMultipleServicesCC, Name: "Multiple-Services-Credit-Control", Type: TypeGrouped},
	{Code: CodeServiceContextID, Name: "Service-Context-Id", Type: TypeUTF8String},
}
