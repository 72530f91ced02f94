package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := NewClient("rzp_test_key", "secret123", "whsecret", "", time.Second)

	valid := sign("secret123", "order_ABC|pay_XYZ")
	assert.True(t, c.VerifyPaymentSignature("order_ABC", "pay_XYZ", valid))

	// wrong payment ID
	assert.False(t, c.VerifyPaymentSignature("order_ABC", "pay_OTHER", valid))
	// wrong secret
	assert.False(t, c.VerifyPaymentSignature("order_ABC", "pay_XYZ", sign("badsecret", "order_ABC|pay_XYZ")))
	// garbage signature
	assert.False(t, c.VerifyPaymentSignature("order_ABC", "pay_XYZ", "not-a-signature"))
	assert.False(t, c.VerifyPaymentSignature("order_ABC", "pay_XYZ", ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := NewClient("rzp_test_key", "secret123", "whsecret", "", time.Second)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	assert.True(t, c.VerifyWebhookSignature(body, sign("whsecret", string(body))))

	// signature must be over the exact raw body
	assert.False(t, c.VerifyWebhookSignature([]byte(`{"event":"payment.captured"}`), sign("whsecret", string(body))))
	// payment key secret is not the webhook secret
	assert.False(t, c.VerifyWebhookSignature(body, sign("secret123", string(body))))
}
