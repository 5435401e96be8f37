package main

import "github.com/nostrbank/ledgerd/internal/cli"

func main() {
	cli.Execute()
}
