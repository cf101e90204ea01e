package main

import (
	"os"

	"github.com/cloudsim-labs/fireprox-ctl/cmd"
	"github.com/cloudsim-labs/fireprox-ctl/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
