package main

import (
	"os"

	"github.com/qurvii/stylesync/cmd/stylesync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
