package main

import (
	"os"

	"github.com/xxxsen/common/logger"

	"github.com/xxxsen/slimdeck/internal/cli"
)

func main() {
	logger.Init("", "info", 0, 0, 0, true)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
