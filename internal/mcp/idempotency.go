package mcp

import (
	"fmt"     // Error wrapping
	"strings" // String helpers
	"time"    // Timeouts and clocks

	"github.com/google/uuid" // Random key suffixes
)

// Idempotency key prefixes per mutating operation
const (
	PrefixPayment  = "pay"
	PrefixRefund   = "refund"
	PrefixTransfer = "transfer"
	PrefixTopUp    = "topup"
)

// KeyGenerator builds idempotency keys.
// Format: <prefix>_<unix millis>_<12 hex chars>, e.g. pay_1767225600000_3f9c2a7b1d04
type KeyGenerator struct {
	now func() time.Time
}

// NewKeyGenerator creates a generator on the wall clock
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{now: time.Now}
}

// New returns a fresh key for one user-initiated submission
func (g *KeyGenerator) New(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s", prefix, g.now().UnixMilli(), suffix)
}
