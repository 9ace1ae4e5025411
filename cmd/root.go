package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "selfai",
	Short: "Personal terminal assistant with a plan/execute/merge pipeline",
	Long: `SelfAI is a terminal chat assistant that decomposes goals into plans of
subtasks, executes them against LLM backends and registered tools, and
merges the results into one answer. It can also inspect and, with human
approval, modify its own source tree via an external coding agent.

Run without arguments to start the interactive chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(selfmodCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(versionCmd)
}
