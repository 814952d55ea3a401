package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

var errMissingWebhookSecret = errors.New("webhook secret is not configured")

// computeSignature produces the hex HMAC-SHA256 of the raw payload bytes,
// prefixed with "<timestamp>." when a timestamp participates per the provider's
// convention. The payload must be the raw request body; re-serializing parsed
// JSON changes bytes and breaks verification.
func computeSignature(secret string, payload []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	if timestamp != "" {
		mac.Write([]byte(timestamp))
		mac.Write([]byte("."))
	}
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyAndDecode runs the strict verification sequence shared by the HMAC
// providers: constant-time signature comparison first, JSON decoding only
// after a match. A parse failure after a valid signature still yields
// Valid=false with a generic reason.
func verifyAndDecode(secret, signature string, payload []byte, timestamp string) (*WebhookVerification, error) {
	if secret == "" {
		return nil, errMissingWebhookSecret
	}
	expected := computeSignature(secret, payload, timestamp)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return &WebhookVerification{Valid: false, Reason: "signature mismatch"}, nil
	}
	return decodeWebhookEvent(payload)
}

// decodeWebhookEvent parses an already-verified payload into {event, payload}.
func decodeWebhookEvent(payload []byte) (*WebhookVerification, error) {
	var event struct {
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return &WebhookVerification{Valid: false, Reason: "payload parse failure"}, nil
	}
	return &WebhookVerification{
		Valid:     true,
		EventType: event.Event,
		Event:     event.Payload,
	}, nil
}
