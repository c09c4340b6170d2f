// Package cmd contains the wallet command tree.
package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quarrychain/quarry/foundation/keystore"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	accountName string
	accountPath string
	nodeURL     string
)

const (
	keyExtension       = ".ecdsa"
	encryptedExtension = ".key"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private", "Name of the account key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keys and payments for a ledger account",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// getPrivateKeyPath resolves the key file for the account name. A name
// already carrying an extension is used as is, otherwise the plain key
// extension is assumed.
func getPrivateKeyPath() string {
	name := accountName
	if !strings.HasSuffix(name, keyExtension) && !strings.HasSuffix(name, encryptedExtension) {
		name += keyExtension
	}

	return filepath.Join(accountPath, name)
}

// loadPrivateKey reads the account key file, prompting for the passphrase
// when the file is encrypted.
func loadPrivateKey() (*ecdsa.PrivateKey, error) {
	path := getPrivateKeyPath()

	if filepath.Ext(path) != encryptedExtension {
		return keystore.LoadECDSA(path)
	}

	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return nil, err
	}

	return keystore.LoadEncrypted(path, passphrase)
}

// savePrivateKey writes the key file, encrypted under a passphrase entered
// twice when encryption is selected. The path written is returned.
func savePrivateKey(privateKey *ecdsa.PrivateKey, encrypt bool) (string, error) {
	if !encrypt {
		path := getPrivateKeyPath()
		if err := keystore.SaveECDSA(path, privateKey); err != nil {
			return "", err
		}
		return path, nil
	}

	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return "", err
	}
	confirm, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if !bytes.Equal(passphrase, confirm) {
		return "", fmt.Errorf("passphrases do not match")
	}

	name := accountName
	if !strings.HasSuffix(name, encryptedExtension) {
		name = strings.TrimSuffix(name, keyExtension) + encryptedExtension
	}

	path := filepath.Join(accountPath, name)
	if err := keystore.SaveEncrypted(path, privateKey, passphrase); err != nil {
		return "", err
	}

	return path, nil
}

// readPassphrase prompts on stderr and reads without echo.
func readPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}

	return passphrase, nil
}
