package main

import (
	"os"

	"github.com/funvibe/liftc/pkg/cli"
)

func main() {
	os.Exit(cli.Entry(os.Args[1:]))
}
