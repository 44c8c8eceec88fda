package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// fingerprintLen is the number of hex characters kept from the hash.
// 64 bits of a well-distributed hash is plenty for dedup within one
// account's history; a collision is treated as the same transaction.
const fingerprintLen = 16

// Fingerprint derives the dedup key for a transaction that has no native
// unique identifier from its upstream source. It is deterministic over
// (date, amount, description).
func Fingerprint(date time.Time, amount decimal.Decimal, description string) string {
	payload := fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), amount.String(), description)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// WithFingerprint returns c with its Fingerprint field populated when the
// parser did not supply one.
func WithFingerprint(c Canonical) Canonical {
	if c.Fingerprint == "" {
		c.Fingerprint = Fingerprint(c.Date, c.Amount, c.RawDescription)
	}
	return c
}
