package avp

import (
	"fmt"
	"io"
	"strings"
)

// Grouped is a value made of nested attributes
type Grouped []*AVP

// --------------------------------------------------------------------------
// Interface Methods (docu see avp.Value)
// --------------------------------------------------------------------------

func (g Grouped) Type() Type { return TypeGrouped }

func (g Grouped) Len() uint32 {
	var n uint32
	for _, a := range g {
		if a != nil {
			n += a.PaddedLen()
		}
	}
	return n
}

func (g Grouped) Encode(w io.Writer) error {
	for i, a := range g {
		if a == nil {
			return fmt.Errorf("%w: index %d", ErrNilAVP, i)
		}
	}
	for _, a := range g {
		if err := a.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func (g Grouped) String() string {
	parts := make([]string, 0, len(g))
	for _, a := range g {
		if a == nil {
			parts = append(parts, "<nil>")
			continue
		}
		parts = append(parts, a.String())
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Find returns the first nested attribute with the given code
func (g Grouped) Find(code uint32) (*AVP, bool) {
	for _, a := range g {
		if a != nil && a.Code == code {
			return a, true
		}
	}
	return nil, false
}

// DecodeGrouped decodes the nested attributes of a grouped value
func DecodeGrouped(data []byte, dict *Dictionary) (Grouped, error) {
	avps, err := DecodeAVPs(data, dict)
	if err != nil {
		return nil, err
	}
	return Grouped(avps), nil
}
