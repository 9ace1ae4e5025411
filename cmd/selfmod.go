package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var selfmodCmd = &cobra.Command{
	Use:   "selfmod <path> \"instruction\"",
	Short: "Request a gated modification of a source file",
	Long: `Classifies the target path against the protected/sensitive/allowed
safety lists. Protected paths are always refused; sensitive paths need an
affirmative confirmation; paths matching no list are refused by default.
Approved requests back up the file and hand it to the configured external
coding agent.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(".")
		if err != nil {
			return err
		}
		path := args[0]
		instruction := strings.Join(args[1:], " ")
		return a.runner.Modify(context.Background(), path, instruction)
	},
}
