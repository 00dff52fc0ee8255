package main

import "github.com/sygmaprotocol/bridge-indexer/cmd"

func main() {
	cmd.Execute()
}
