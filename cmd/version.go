package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at release time.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("selfai %s\n", version)
	},
}
