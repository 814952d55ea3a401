package gateway

import (
	"errors"
	"testing"
)

func TestVerifyAndDecode_ValidSignature(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"event":"payment.captured","payload":{"order_id":"order_abc","id":"pay_123"}}`)
	sig := computeSignature(secret, payload, "")

	v, err := verifyAndDecode(secret, sig, payload, "")
	if err != nil {
		t.Fatalf("verifyAndDecode failed: %v", err)
	}
	if !v.Valid {
		t.Fatalf("Expected valid verification, got reason %q", v.Reason)
	}
	if v.EventType != "payment.captured" {
		t.Errorf("Expected event type payment.captured, got %s", v.EventType)
	}
	if v.Event["order_id"] != "order_abc" {
		t.Errorf("Expected order_id order_abc, got %v", v.Event["order_id"])
	}
}

func TestVerifyAndDecode_TamperedPayload(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"event":"payment.captured","payload":{"id":"pay_123"}}`)
	sig := computeSignature(secret, payload, "")

	// Flip one byte after signing
	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-3] ^= 0x01

	v, err := verifyAndDecode(secret, sig, tampered, "")
	if err != nil {
		t.Fatalf("verifyAndDecode returned error: %v", err)
	}
	if v.Valid {
		t.Error("Tampered payload must not verify")
	}
}

func TestVerifyAndDecode_WrongSecret(t *testing.T) {
	payload := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := computeSignature("secret-a", payload, "")

	v, err := verifyAndDecode("secret-b", sig, payload, "")
	if err != nil {
		t.Fatalf("verifyAndDecode returned error: %v", err)
	}
	if v.Valid {
		t.Error("Signature from a different secret must not verify")
	}
}

func TestVerifyAndDecode_TimestampBinding(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"event":"order.paid","payload":{}}`)
	sig := computeSignature(secret, payload, "1700000000")

	v, err := verifyAndDecode(secret, sig, payload, "1700000000")
	if err != nil {
		t.Fatalf("verifyAndDecode failed: %v", err)
	}
	if !v.Valid {
		t.Error("Expected valid verification with matching timestamp")
	}

	// The same signature must not verify under a different timestamp
	v, _ = verifyAndDecode(secret, sig, payload, "1700000001")
	if v.Valid {
		t.Error("Signature is bound to its timestamp")
	}
}

func TestVerifyAndDecode_MissingSecret(t *testing.T) {
	payload := []byte(`{"event":"order.paid","payload":{}}`)
	_, err := verifyAndDecode("", "deadbeef", payload, "")
	if !errors.Is(err, errMissingWebhookSecret) {
		t.Errorf("Expected errMissingWebhookSecret, got %v", err)
	}
}

func TestVerifyAndDecode_UnparseablePayloadAfterValidSignature(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`this is not json`)
	sig := computeSignature(secret, payload, "")

	// The signature matches, but the body does not parse. That is still an
	// invalid webhook, reported through the result rather than a panic or
	// an error.
	v, err := verifyAndDecode(secret, sig, payload, "")
	if err != nil {
		t.Fatalf("verifyAndDecode returned error: %v", err)
	}
	if v.Valid {
		t.Error("Unparseable payload must yield an invalid verification")
	}
}
