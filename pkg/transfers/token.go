package transfers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

const tokenBytes = 16

var (
	// Namespaces for identifiers derived from a pending token.
	transactionNamespace = uuid.MustParse("6f1d3c52-8a43-4c1e-9a57-0f2b4d8e7c11")
	referenceNamespace   = uuid.MustParse("b3e0a9d4-27c5-4f86-8d1a-5c6e7f9012ab")
)

// newPendingToken returns 128 random bits, base64url encoded without padding.
func newPendingToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// settlementID derives the transaction ID for a claimed token, so a retried
// settlement of the same token collides on the ledger entry instead of settling twice.
func settlementID(token string) string {
	return uuid.NewSHA1(transactionNamespace, []byte(token)).String()
}

// deliveryReference is a short correlation ID for the code delivery that does not reveal the token.
func deliveryReference(token string) string {
	return uuid.NewSHA1(referenceNamespace, []byte(token)).String()[:8]
}
