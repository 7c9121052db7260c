package main

import "github.com/mcoot/matchclient/internal/cli"

func main() {
	cli.Execute()
}
