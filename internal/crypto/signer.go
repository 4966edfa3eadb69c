// Package crypto provides key management and Ed25519 request signing for the
// Robinhood crypto trading API.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
)

// Signer produces the per-request authentication headers for the Robinhood
// crypto API. Credentials are immutable after construction and owned
// exclusively by the Signer; nothing else in the process reads them.
type Signer struct {
	apiKey string
	priv   ed25519.PrivateKey
}

// NewSigner creates a Signer from the API key and the base64-encoded 32-byte
// Ed25519 seed. Missing or malformed credentials are a fatal configuration
// error; a process that cannot sign requests cannot usefully proceed.
func NewSigner(apiKey, base64Seed string) (*Signer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("crypto: API key is empty")
	}
	if base64Seed == "" {
		return nil, fmt.Errorf("crypto: private key is empty")
	}

	seed, err := base64.StdEncoding.DecodeString(base64Seed)
	if err != nil {
		return nil, fmt.Errorf("crypto: private key is not valid base64: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("crypto: expected %d-byte Ed25519 seed, got %d bytes", ed25519.SeedSize, len(seed))
	}

	return &Signer{
		apiKey: apiKey,
		priv:   ed25519.NewKeyFromSeed(seed),
	}, nil
}

// APIKey returns the configured API key.
func (s *Signer) APIKey() string {
	return s.apiKey
}

// PublicKeyBase64 returns the base64-encoded Ed25519 public key, as
// registered with the exchange.
func (s *Signer) PublicKeyBase64() string {
	pub := s.priv.Public().(ed25519.PublicKey)
	return base64.StdEncoding.EncodeToString(pub)
}

// Sign signs the canonical message for one request and returns the base64
// signature. The message is the exact concatenation
//
//	apiKey + timestamp + path + method + body
//
// with the body string used verbatim: differing key order or whitespace in
// the JSON changes the signature, so the signed bytes must also be the bytes
// sent on the wire.
func (s *Signer) Sign(method, path, body string, timestamp int64) string {
	msg := s.apiKey + strconv.FormatInt(timestamp, 10) + path + method + body
	sig := ed25519.Sign(s.priv, []byte(msg))
	return base64.StdEncoding.EncodeToString(sig)
}

// Headers returns the three authentication headers for one request.
func (s *Signer) Headers(method, path, body string, timestamp int64) map[string]string {
	return map[string]string{
		"x-api-key":   s.apiKey,
		"x-signature": s.Sign(method, path, body, timestamp),
		"x-timestamp": strconv.FormatInt(timestamp, 10),
	}
}

// GenerateKeypair creates a fresh Ed25519 keypair and returns the
// base64-encoded seed and public key. The public key is what gets registered
// in the Robinhood API console.
func GenerateKeypair() (seedB64, publicB64 string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("crypto: generating keypair: %w", err)
	}
	return base64.StdEncoding.EncodeToString(priv.Seed()),
		base64.StdEncoding.EncodeToString(pub),
		nil
}
