package main

import (
	"fmt"
	"os"

	"github.com/asadullah4bls/evalai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "evalai:", cmd.Describe(err))
		os.Exit(1)
	}
}
