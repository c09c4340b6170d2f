package cmd

import (
	"fmt"
	"log"

	"github.com/quarrychain/quarry/foundation/keystore"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var encryptKey bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair with a recovery mnemonic",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVarP(&encryptKey, "encrypt", "e", false, "Encrypt the key file under a passphrase.")
}

func generateRun(cmd *cobra.Command, args []string) {
	mnemonic, err := keystore.GenerateMnemonic()
	if err != nil {
		log.Fatal(err)
	}

	// The key derives from the mnemonic, so the words alone can restore it.
	privateKey, err := keystore.PrivateKeyFromMnemonic(mnemonic, "")
	if err != nil {
		log.Fatal(err)
	}

	path, err := savePrivateKey(privateKey, encryptKey)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("account:", signature.PublicKeyString(&privateKey.PublicKey))
	fmt.Println("key file:", path)
	fmt.Println()
	fmt.Println("Recovery words, shown once. Write them down and keep them safe:")
	fmt.Println(mnemonic)
}
