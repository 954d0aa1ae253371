package main

import (
	"fmt"
	"os"

	"github.com/netsentinel/sentryview/cmd/sentryview/commands"
)

func main() {
	if err := commands.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
