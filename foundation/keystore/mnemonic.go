package keystore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/tyler-smith/go-bip39"
)

// mnemonicEntropyBits is the entropy size for 24 word mnemonics.
const mnemonicEntropyBits = 256

// GenerateMnemonic creates a new 24 word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// PrivateKeyFromMnemonic derives a P-256 private key from a BIP-39
// mnemonic. The same mnemonic and passphrase always derive the same key so
// an account can be restored from its backup words.
func PrivateKeyFromMnemonic(mnemonic string, passphrase string) (*ecdsa.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, passphrase)
	digest := sha256.Sum256(seed)

	// Fold the digest into the valid scalar range [1, N-1].
	curve := elliptic.P256()
	nMinusOne := new(big.Int).Sub(curve.Params().N, big.NewInt(1))

	d := new(big.Int).SetBytes(digest[:])
	d.Mod(d, nMinusOne)
	d.Add(d, big.NewInt(1))

	privateKey := ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve},
		D:         d,
	}
	privateKey.PublicKey.X, privateKey.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())

	return &privateKey, nil
}
