package main

import (
	"os"

	"github.com/aldoetobex/council-case-backend/internal/cli"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
)

func main() {
	cmd := cli.NewRootCmd()
	err := cmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
