package main

import (
	"os"

	"github.com/magdy/fawkes/mdpanel/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
