// Package signature provides helper functions for hashing, signing and
// verifying ledger payloads. Keys are ECDSA over the NIST P-256 curve with
// SHA-256 as the digest. Public keys and signatures travel as base64 of
// their raw fixed-width byte forms, and an account address is exactly the
// portable public key string.
package signature

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// Sizes of the raw encodings: a public key is X||Y and a signature is R||S,
// each component 32 bytes big-endian left-padded.
const (
	publicKeySize = 64
	signatureSize = 64
)

// =============================================================================

// Hash returns the lowercase hex SHA-256 digest of the data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign hashes the message with SHA-256 and signs the digest with the
// private key. The signature is returned in its portable base64 form.
func Sign(message []byte, privateKey *ecdsa.PrivateKey) (string, error) {
	digest := sha256.Sum256(message)

	r, s, err := ecdsa.Sign(rand.Reader, privateKey, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing message: %w", err)
	}

	sig := make([]byte, signatureSize)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])

	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks the portable signature against the message using the
// portable public key. A nil return means the signature is authentic.
func Verify(publicKey string, sig string, message []byte) error {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return err
	}

	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}
	if len(raw) != signatureSize {
		return fmt.Errorf("signature must be %d bytes, got %d", signatureSize, len(raw))
	}

	r := new(big.Int).SetBytes(raw[:32])
	s := new(big.Int).SetBytes(raw[32:])
	if r.Sign() == 0 || s.Sign() == 0 {
		return errors.New("signature values cannot be zero")
	}

	digest := sha256.Sum256(message)
	if !ecdsa.Verify(pub, digest[:], r, s) {
		return errors.New("signature does not match message")
	}

	return nil
}

// =============================================================================

// PublicKeyString returns the portable base64 form of the public key.
func PublicKeyString(pub *ecdsa.PublicKey) string {
	raw := make([]byte, publicKeySize)
	pub.X.FillBytes(raw[:32])
	pub.Y.FillBytes(raw[32:])

	return base64.StdEncoding.EncodeToString(raw)
}

// ParsePublicKey decodes a portable public key string back into a usable
// P-256 public key.
func ParsePublicKey(publicKey string) (*ecdsa.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	if len(raw) != publicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", publicKeySize, len(raw))
	}

	x := new(big.Int).SetBytes(raw[:32])
	y := new(big.Int).SetBytes(raw[32:])

	curve := elliptic.P256()
	if !curve.IsOnCurve(x, y) {
		return nil, errors.New("public key is not on the P-256 curve")
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// GenerateKey creates a new P-256 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return key, nil
}
