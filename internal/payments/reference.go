package payments

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const referencePrefix = "INK"

// NewReference generates a fresh idempotency key for a payment attempt:
// namespace prefix, millisecond timestamp, random suffix.
func NewReference() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// timestamp alone still distinguishes attempts within the process
		return fmt.Sprintf("%s-%d", referencePrefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", referencePrefix, time.Now().UnixMilli(), hex.EncodeToString(suffix))
}
