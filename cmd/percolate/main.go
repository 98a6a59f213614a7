package main

import (
	"os"

	"github.com/oakmoss/percolate/cmd/percolate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
