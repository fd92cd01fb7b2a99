// Package main is the entry point for the codecrund daemon.
//
// codecrund hosts the in-process Codec Facade engine as a standalone
// service: a gRPC data-plane surface for configure/encode/decode/flush/
// reset/close, and a read-only HTTP admin surface over the Resource
// Manager's registry of live codec instances.
package main

import (
	"os"

	"github.com/jmylchreest/codecrun/cmd/codecrund/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
