package crypto

import (
	"strings"
	"testing"
)

// Fixture captured against the live API: signing the exact message bytes with
// this seed must always yield this signature.
const (
	fixtureSeed   = "xQnTJVeQLmw1/Mg2YimEViSpw/SdJcgNXZ5kQkAXNPU="
	fixtureAPIKey = "rh-api-6148effc-c0b1-486c-8940-a1d099456be6"
	fixtureBody   = `{"client_order_id": "131de903-5a9c-4260-abc1-28d562a5dcf0", "side": "buy", "symbol": "BTC-USD", "type": "market", "market_order_config": {"asset_quantity": "0.1"}}`
	fixtureSig    = "q/nEtxp/P2Or3hph3KejBqnw5o9qeuQ+hYRnB56FaHbjDsNUY9KhB1asMxohDnzdVFSD7StaTqjSd9U9HvaRAw=="
)

func TestSignKnownVector(t *testing.T) {
	signer, err := NewSigner(fixtureAPIKey, fixtureSeed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	sig := signer.Sign("POST", "/api/v1/crypto/trading/orders/", fixtureBody, 1698708981)
	if sig != fixtureSig {
		t.Errorf("signature mismatch:\n got  %s\n want %s", sig, fixtureSig)
	}
}

func TestSignDeterministic(t *testing.T) {
	signer, err := NewSigner(fixtureAPIKey, fixtureSeed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	first := signer.Sign("GET", "/api/v1/crypto/trading/accounts/", "", 1698708981)
	for i := 0; i < 5; i++ {
		if got := signer.Sign("GET", "/api/v1/crypto/trading/accounts/", "", 1698708981); got != first {
			t.Fatalf("signature not deterministic: %s vs %s", got, first)
		}
	}
}

func TestHeaders(t *testing.T) {
	signer, err := NewSigner(fixtureAPIKey, fixtureSeed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	h := signer.Headers("POST", "/api/v1/crypto/trading/orders/", fixtureBody, 1698708981)

	if h["x-api-key"] != fixtureAPIKey {
		t.Errorf("x-api-key = %q, want %q", h["x-api-key"], fixtureAPIKey)
	}
	if h["x-timestamp"] != "1698708981" {
		t.Errorf("x-timestamp = %q, want %q", h["x-timestamp"], "1698708981")
	}
	if h["x-signature"] != fixtureSig {
		t.Errorf("x-signature = %q, want %q", h["x-signature"], fixtureSig)
	}
}

func TestNewSignerRejectsBadCredentials(t *testing.T) {
	cases := []struct {
		name   string
		apiKey string
		seed   string
	}{
		{"empty api key", "", fixtureSeed},
		{"empty seed", fixtureAPIKey, ""},
		{"not base64", fixtureAPIKey, "not-valid-base64!!!"},
		{"wrong length", fixtureAPIKey, "c2hvcnQ="}, // "short"
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSigner(tc.apiKey, tc.seed); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGenerateKeypair(t *testing.T) {
	seed, pub, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	signer, err := NewSigner("rh-api-test", seed)
	if err != nil {
		t.Fatalf("NewSigner with generated seed: %v", err)
	}
	if signer.PublicKeyBase64() != pub {
		t.Errorf("public key mismatch: %s vs %s", signer.PublicKeyBase64(), pub)
	}
}

func TestEncryptDecryptSeedRoundTrip(t *testing.T) {
	blob, err := EncryptSeed(fixtureSeed, "hunter2")
	if err != nil {
		t.Fatalf("EncryptSeed: %v", err)
	}

	got, err := DecryptSeed(blob, "hunter2")
	if err != nil {
		t.Fatalf("DecryptSeed: %v", err)
	}
	if got != fixtureSeed {
		t.Errorf("round trip mismatch: got %s", got)
	}

	if _, err := DecryptSeed(blob, "wrong"); err == nil {
		t.Error("expected decryption failure with wrong password")
	}
}

func TestLoadSeedRaw(t *testing.T) {
	got, err := LoadSeed(KeyConfig{RawSeedB64: fixtureSeed})
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if got != fixtureSeed {
		t.Errorf("LoadSeed = %q, want %q", got, fixtureSeed)
	}

	_, err = LoadSeed(KeyConfig{})
	if err == nil || !strings.Contains(err.Error(), "no private key source") {
		t.Errorf("expected no-source error, got %v", err)
	}
}
