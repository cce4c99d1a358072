package main

import (
	"fmt"
	"os"

	"pptrans/internal/cli"
)

func main() {
	flags := &cli.Flags{}
	rootCmd := cli.CreateRootCommand(flags)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
