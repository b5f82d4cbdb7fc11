package main

import (
	"os"

	"github.com/jonesrussell/north-cloud/collector/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
