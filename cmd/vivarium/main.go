// Command vivarium runs the microsimulation kernel from the command line.
package main

import (
	"os"

	"github.com/adpick/vivarium/cliutil"
)

func main() {
	if err := cliutil.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
