package main

import "github.com/quarrychain/quarry/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
