// Package keystore maintains the private keys used by the node and the
// wallet on disk.
package keystore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"
)

// keyFile is the on-disk JSON format for an encrypted key.
type keyFile struct {
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	EncryptedKey []byte    `json:"encrypted_key"`
}

// LoadECDSA loads a P-256 private key from a plain hex encoded file.
func LoadECDSA(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse key: %w", err)
	}

	return PrivateKeyFromBytes(raw)
}

// SaveECDSA writes a P-256 private key to a plain hex encoded file.
func SaveECDSA(path string, privateKey *ecdsa.PrivateKey) error {
	d := make([]byte, 32)
	privateKey.D.FillBytes(d)

	if err := os.WriteFile(path, []byte(hex.EncodeToString(d)), 0600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}

	return nil
}

// LoadEncrypted loads a private key from an encrypted key file using the
// provided passphrase.
func LoadEncrypted(path string, passphrase []byte) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	if kf.Version != 1 {
		return nil, fmt.Errorf("unsupported key file version: %d", kf.Version)
	}

	raw, err := Decrypt(kf.EncryptedKey, passphrase)
	if err != nil {
		return nil, err
	}

	return PrivateKeyFromBytes(raw)
}

// SaveEncrypted writes a private key to an encrypted key file protected by
// the provided passphrase.
func SaveEncrypted(path string, privateKey *ecdsa.PrivateKey, passphrase []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("key file %q already exists", path)
	}

	d := make([]byte, 32)
	privateKey.D.FillBytes(d)

	encrypted, err := Encrypt(d, passphrase, DefaultParams())
	if err != nil {
		return err
	}

	kf := keyFile{
		Version:      1,
		CreatedAt:    time.Now().UTC(),
		EncryptedKey: encrypted,
	}

	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key file: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}

	return nil
}

// PrivateKeyFromBytes reconstructs a P-256 private key from its 32 byte
// scalar.
func PrivateKeyFromBytes(raw []byte) (*ecdsa.PrivateKey, error) {
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid key length %d", len(raw))
	}

	curve := elliptic.P256()

	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errors.New("key scalar out of range")
	}

	privateKey := ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve},
		D:         d,
	}
	privateKey.PublicKey.X, privateKey.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())

	return &privateKey, nil
}
