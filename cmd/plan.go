package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/selfai-agent/selfai/pkg/utils"
)

var planShowSubtasks bool

var planCmd = &cobra.Command{
	Use:   "plan \"goal\"",
	Short: "Run one goal through the plan/execute/merge pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(".")
		if err != nil {
			return err
		}
		goal := strings.Join(args, " ")

		res := a.pipe.Run(context.Background(), goal)

		if planShowSubtasks {
			for _, r := range res.Results {
				fmt.Printf("[%s] %s (%.1fs)\n", r.Status, r.SubtaskID, r.Elapsed)
				if r.Status == "failure" {
					fmt.Printf("    %s\n", r.ErrorDetail)
					continue
				}
				fmt.Printf("    %s\n", utils.TruncateForDisplay(r.Output, 300))
			}
			fmt.Println()
		}
		fmt.Println(res.Answer)
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVarP(&planShowSubtasks, "subtasks", "s", false, "show per-subtask results before the answer")
}
