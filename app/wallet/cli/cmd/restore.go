package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/quarrychain/quarry/foundation/keystore"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a key pair from its recovery mnemonic",
	Run:   restoreRun,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolVarP(&encryptKey, "encrypt", "e", false, "Encrypt the key file under a passphrase.")
}

func restoreRun(cmd *cobra.Command, args []string) {
	fmt.Fprint(os.Stderr, "Recovery words: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal(err)
	}
	mnemonic := strings.Join(strings.Fields(line), " ")

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
}
