// This program performs administrative tasks against a running ledger node.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/quarrychain/quarry/app/tooling/admin/commands"
	"github.com/quarrychain/quarry/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args conf.Args
		Node struct {
			PublicURL  string `conf:"default:http://localhost:8080"`
			PrivateURL string `conf:"default:http://localhost:9080"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "QUARRYADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	return processCommands(cfg.Args, cfg.Node.PublicURL, cfg.Node.PrivateURL)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, publicURL string, privateURL string) error {
	switch args.Num(0) {
	case "genesis":
		if err := commands.Genesis(publicURL); err != nil {
			return fmt.Errorf("getting genesis: %w", err)
		}

	case "tip":
		if err := commands.Tip(publicURL); err != nil {
			return fmt.Errorf("getting tip: %w", err)
		}

	case "block":
		if err := commands.Block(publicURL, args.Num(1)); err != nil {
			return fmt.Errorf("getting block: %w", err)
		}

	case "balance":
		if err := commands.Balance(publicURL, args.Num(1)); err != nil {
			return fmt.Errorf("getting balance: %w", err)
		}

	case "unspent":
		if err := commands.Unspent(privateURL); err != nil {
			return fmt.Errorf("getting unspent outputs: %w", err)
		}

	case "txs":
		if err := commands.Transactions(publicURL); err != nil {
			return fmt.Errorf("getting mempool transactions: %w", err)
		}

	case "mine":
		if err := commands.Mine(privateURL); err != nil {
			return fmt.Errorf("signaling mining: %w", err)
		}

	case "pay":
		if err := commands.Pay(privateURL, args.Num(1), args.Num(2)); err != nil {
			return fmt.Errorf("creating payment: %w", err)
		}

	case "events":
		if err := commands.Events(publicURL); err != nil {
			return fmt.Errorf("streaming events: %w", err)
		}

	default:
		fmt.Println("genesis:          show the genesis record")
		fmt.Println("tip:              show the block at the chain tip")
		fmt.Println("block <id>:       show the archived block with the id")
		fmt.Println("balance <acct>:   show the balance for the account")
		fmt.Println("unspent:          show the node's unspent outputs")
		fmt.Println("txs:              show the transactions waiting in the mempool")
		fmt.Println("mine:             signal the node to mine a block")
		fmt.Println("pay <acct> <amt>: pay the account from the node's funds")
		fmt.Println("events:           stream node events until interrupted")
		fmt.Println("provide a command and flags for smaller admin tasks")
		return commands.ErrHelp
	}

	return nil
}
