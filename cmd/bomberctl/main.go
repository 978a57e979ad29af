package main

import "github.com/iceweasel13/solana-bomber/cmd"

func main() {
	cmd.Execute()
}
