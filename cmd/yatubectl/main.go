package main

import (
	"os"

	"github.com/yatube/yatube/internal/cli"
	"github.com/yatube/yatube/pkg/logger"
)

func main() {
	logger.SetOutput(os.Stderr)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
