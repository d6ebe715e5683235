package message

import (
	"fmt"
	"github.com/google/uuid"
	"math/rand"
	"sync/atomic"
	"time"
)

// IDGenerator hands out hop-by-hop and end-to-end identifiers.
// The client never generates identifiers itself: callers must keep hop-by-hop
// ids unique among the requests in flight on one connection, which a single
// generator per connection guarantees until the 32 bit counter wraps.
type IDGenerator struct {
	hopByHop atomic.Uint32
	endToEnd atomic.Uint32
}

// NewIDGenerator creates a generator with a random hop-by-hop start value and an
// end-to-end start value built from the current time (high 12 bits) and a random
// part (low 20 bits)
func NewIDGenerator() *IDGenerator {
	g := &IDGenerator{}
	g.hopByHop.Store(rand.Uint32())
	g.endToEnd.Store(uint32(time.Now().Unix())<<20 | rand.Uint32()&0xFFFFF)
	return g
}

// NextHopByHop returns the next hop-by-hop id
func (g *IDGenerator) NextHopByHop() uint32 {
	return g.hopByHop.Add(1)
}

// NextEndToEnd returns the next end-to-end id
func (g *IDGenerator) NextEndToEnd() uint32 {
	return g.endToEnd.Add(1)
}

var sessionCounter atomic.Uint32

// NewSessionID builds a Session-Id of the form
// <origin-host>;<high 32 bits>;<low 32 bits>;<uuid>
func NewSessionID(originHost string) string {
	high := uint32(time.Now().Unix())
	low := sessionCounter.Add(1)
	return fmt.Sprintf("%s;%d;%d;%s", originHost, high, low, uuid.NewString())
}
