package main

import (
	"fmt"
	"os"

	"github.com/anime-shed/barcode-studio-go/cmd/barcodectl/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	root := cmd.NewRootCommand(fmt.Sprintf("%s (commit: %s)", version, commit))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
