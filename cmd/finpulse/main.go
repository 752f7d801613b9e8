package main

import (
	"fmt"
	"os"

	"github.com/rocjay1/finpulse/internal/cli"
)

func main() {
	if err := cli.NewCLI(cli.Options{Output: os.Stdout}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
