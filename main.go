package main

import (
	"os"

	"github.com/selfai-agent/selfai/cmd"
	"github.com/selfai-agent/selfai/pkg/utils"
)

func main() {
	logger := utils.GetLogger(false)
	// Defer closing the logger to ensure all buffered logs are written
	defer func() {
		if err := logger.Close(); err != nil {
			os.Stderr.WriteString("Error closing logger: " + err.Error() + "\n")
		}
	}()

	if err := cmd.Execute(); err != nil {
		logger.Logf("Application error: %v", err)
		os.Exit(1)
	}
}
