package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// paymentSignaturePayload is what Razorpay signs on successful checkout:
// the order ID and payment ID joined by a pipe.
func paymentSignaturePayload(orderID, paymentID string) []byte {
	return []byte(fmt.Sprintf("%s|%s", orderID, paymentID))
}

// computeHMAC returns the lowercase hex HMAC-SHA256 of payload under secret.
func computeHMAC(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyHMAC compares an expected signature in constant time.
func verifyHMAC(secret string, payload []byte, signature string) bool {
	expected := computeHMAC(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
