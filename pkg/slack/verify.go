package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const signatureWindow = 5 * time.Minute

// VerifySignature checks the v0 request signature Slack sends with every
// webhook, rejecting timestamps outside the replay window.
func VerifySignature(signingSecret, timestamp string, body []byte, signature string, now time.Time) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureWindow || age < -signatureWindow {
		return false
	}

	return hmac.Equal([]byte(Sign(signingSecret, timestamp, body)), []byte(signature))
}

// Sign produces the header value Slack would send. Used by tests and the CLI.
func Sign(signingSecret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}
