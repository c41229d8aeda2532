// plancalc computes calorie and macro targets from the command line, or serves
// the same calculator to MCP clients over stdio.
// Usage: go run ./cmd/plancalc targets --sex male --weight 80 --height 180 --age 30 --activity moderate --goal fat_loss
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
