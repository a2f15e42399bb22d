package main

import (
	"os"

	"github.com/hydrosched/hydrosched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
