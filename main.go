// Package main is the entry point for the rbi application
package main

import (
	"github.com/ethpandaops/rbi/cmd"
)

func main() {
	cmd.Execute()
}
