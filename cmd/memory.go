package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selfai-agent/selfai/pkg/utils"
)

var memoryCmd = &cobra.Command{
	Use:   "memory [list|show <category>|clear <category>]",
	Short: "Inspect or clear stored goal/answer memory",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(".")
		if err != nil {
			return err
		}

		sub := "list"
		arg := ""
		if len(args) > 0 {
			sub = args[0]
		}
		if len(args) > 1 {
			arg = args[1]
		}

		switch sub {
		case "list":
			cats, err := a.mem.Categories()
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Printf("- %s\n", utils.CapitalizeWords(c))
			}
		case "show":
			if arg == "" {
				arg = a.cfg.ActiveCategory
			}
			records, err := a.mem.Recent(arg, 10)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Printf("[%s] Q: %s\nA: %s\n\n",
					rec.Timestamp.Format("2006-01-02 15:04"),
					rec.Goal,
					utils.TruncateForDisplay(rec.Answer, 500))
			}
		case "clear":
			if arg == "" {
				return fmt.Errorf("clear needs a category name")
			}
			if !a.logger.AskForConfirmation(fmt.Sprintf("Clear memory category %q?", arg), false, false) {
				return nil
			}
			return a.mem.Clear(arg)
		default:
			return fmt.Errorf("unknown subcommand %q", sub)
		}
		return nil
	},
}
