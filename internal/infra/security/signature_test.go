package security

import "testing"

func TestVerifySignature_RoundTrip(t *testing.T) {
	secret := []byte("webhook-secret")
	payload := []byte(`{"transaction_id":"txn-1","status":"success"}`)

	sig := SignPayload(secret, payload)
	if !VerifySignature(secret, payload, sig) {
		t.Fatalf("signature must verify against the same body")
	}
}

func TestVerifySignature_TamperedBodyRejected(t *testing.T) {
	secret := []byte("webhook-secret")
	sig := SignPayload(secret, []byte(`{"amount":100}`))
	if VerifySignature(secret, []byte(`{"amount":999}`), sig) {
		t.Fatalf("altered body must not verify")
	}
}

func TestVerifySignature_WrongSecretRejected(t *testing.T) {
	payload := []byte("body")
	sig := SignPayload([]byte("secret-a"), payload)
	if VerifySignature([]byte("secret-b"), payload, sig) {
		t.Fatalf("signature from another secret must not verify")
	}
}

func TestVerifySignature_EmptySecretDisablesCheck(t *testing.T) {
	if !VerifySignature(nil, []byte("anything"), "garbage") {
		t.Fatalf("empty secret must disable verification")
	}
}
