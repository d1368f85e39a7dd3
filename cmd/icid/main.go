package main

import (
	"os"

	"github.com/icidkit/icid/app/logger"
)

var log = logger.NewNamed("main")

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
