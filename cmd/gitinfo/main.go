// Command gitinfo generates Go constants describing the git state of a
// project. It is meant to be run from a go:generate directive:
//
//	//go:generate go run github.com/timmattison/gitinfo/cmd/gitinfo generate
package main

import (
	"os"

	"github.com/timmattison/gitinfo/cmd/gitinfo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
