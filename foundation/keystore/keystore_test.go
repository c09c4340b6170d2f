package keystore_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/quarrychain/quarry/foundation/keystore"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_PlainKeyFiles(t *testing.T) {
	t.Log("Given the need to store keys as plain hex files.")
	{
		t.Logf("\tTest 0:\tWhen saving and loading a key.")
		{
			key, err := signature.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key: %v", failed, err)
			}

			path := filepath.Join(t.TempDir(), "miner.ecdsa")
			if err := keystore.SaveECDSA(path, key); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save the key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save the key.", success)

			loaded, err := keystore.LoadECDSA(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the key.", success)

			if loaded.D.Cmp(key.D) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould load the same scalar back.", failed)
			}
			if signature.PublicKeyString(&loaded.PublicKey) != signature.PublicKeyString(&key.PublicKey) {
				t.Fatalf("\t%s\tTest 0:\tShould derive the same address.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the same address.", success)
		}

		t.Logf("\tTest 1:\tWhen the file is missing or corrupt.")
		{
			dir := t.TempDir()

			if _, err := keystore.LoadECDSA(filepath.Join(dir, "nope.ecdsa")); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a missing file.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a missing file.", success)

			if _, err := keystore.PrivateKeyFromBytes(make([]byte, 32)); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a zero scalar.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a zero scalar.", success)
		}
	}
}

func Test_EncryptedKeyFiles(t *testing.T) {
	t.Log("Given the need to store keys under a passphrase.")
	{
		t.Logf("\tTest 0:\tWhen saving and loading an encrypted key.")
		{
			key, err := signature.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key: %v", failed, err)
			}

			path := filepath.Join(t.TempDir(), "miner.key")
			passphrase := []byte("open sesame")

			if err := keystore.SaveEncrypted(path, key, passphrase); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save the key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save the key.", success)

			if err := keystore.SaveEncrypted(path, key, passphrase); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould refuse to overwrite an existing key file.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse to overwrite an existing key file.", success)

			loaded, err := keystore.LoadEncrypted(path, passphrase)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the key back: %v", failed, err)
			}
			if loaded.D.Cmp(key.D) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould load the same scalar back.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould load the same scalar back.", success)

			if _, err := keystore.LoadEncrypted(path, []byte("wrong")); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a wrong passphrase.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a wrong passphrase.", success)
		}
	}
}

func Test_Mnemonic(t *testing.T) {
	t.Log("Given the need to restore keys from backup words.")
	{
		t.Logf("\tTest 0:\tWhen deriving keys from a mnemonic.")
		{
			mnemonic, err := keystore.GenerateMnemonic()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a mnemonic: %v", failed, err)
			}
			if words := len(strings.Fields(mnemonic)); words != 24 {
				t.Fatalf("\t%s\tTest 0:\tShould generate 24 words, got %d.", failed, words)
			}
			t.Logf("\t%s\tTest 0:\tShould generate 24 words.", success)

			key1, err := keystore.PrivateKeyFromMnemonic(mnemonic, "")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive a key: %v", failed, err)
			}
			key2, err := keystore.PrivateKeyFromMnemonic(mnemonic, "")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive the key again: %v", failed, err)
			}
			if key1.D.Cmp(key2.D) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould derive the same key every time.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the same key every time.", success)

			key3, err := keystore.PrivateKeyFromMnemonic(mnemonic, "extra words")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive with a passphrase: %v", failed, err)
			}
			if key1.D.Cmp(key3.D) == 0 {
				t.Fatalf("\t%s\tTest 0:\tShould derive a different key under a passphrase.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive a different key under a passphrase.", success)

			if _, err := keystore.PrivateKeyFromMnemonic("not a real mnemonic", ""); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject an invalid mnemonic.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject an invalid mnemonic.", success)
		}
	}
}
