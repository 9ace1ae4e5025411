package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/selfai-agent/selfai/pkg/intent"
	"github.com/selfai-agent/selfai/pkg/memory"
	"github.com/selfai-agent/selfai/pkg/merge"
	"github.com/selfai-agent/selfai/pkg/prompts"
	"github.com/selfai-agent/selfai/pkg/utils"
)

const chatMaxTokens = 4096

// chatMode controls how free-text input is routed.
type chatMode string

const (
	modeAuto  chatMode = "auto"  // intent classifier decides
	modeChat  chatMode = "chat"  // always conversational
	modeAgent chatMode = "agent" // always through the pipeline
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat (default command)",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(".")
	if err != nil {
		return err
	}

	fmt.Println("SelfAI ready. Type a message, or /help for commands.")
	mode := modeAuto
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit := handleCommand(a, line, &mode)
			if quit {
				return nil
			}
			continue
		}

		handleMessage(a, line, mode)
	}
}

// handleCommand dispatches a slash command by exact-prefix match. Returns
// true when the REPL should exit.
func handleCommand(a *app, line string, mode *chatMode) bool {
	command, rest := splitCommand(line)
	switch command {
	case "/quit", "/exit":
		fmt.Println("bye")
		return true
	case "/help":
		printHelp()
	case "/plan":
		if rest == "" {
			fmt.Println("usage: /plan <goal>")
			break
		}
		runPipeline(a, rest)
	case "/mode":
		switch chatMode(rest) {
		case modeAuto, modeChat, modeAgent:
			*mode = chatMode(rest)
		case "":
			// No argument: cycle auto -> chat -> agent -> auto.
			switch *mode {
			case modeAuto:
				*mode = modeChat
			case modeChat:
				*mode = modeAgent
			default:
				*mode = modeAuto
			}
		default:
			fmt.Println("usage: /mode [auto|chat|agent]")
			return false
		}
		fmt.Printf("mode: %s\n", *mode)
	case "/memory":
		handleMemoryCommand(a, rest)
	case "/selfmod":
		path, instruction := splitCommand(rest)
		if path == "" || instruction == "" {
			fmt.Println("usage: /selfmod <path> <instruction>")
			break
		}
		if err := a.runner.Modify(context.Background(), path, instruction); err != nil {
			fmt.Printf("self-modification refused or failed: %v\n", err)
		}
	default:
		fmt.Printf("unknown command: %s (try /help)\n", command)
	}
	return false
}

// handleMessage routes one free-text message according to the active mode.
func handleMessage(a *app, line string, mode chatMode) {
	agentic := mode == modeAgent
	if mode == modeAuto {
		decision := intent.Classify(line)
		a.logger.Logf("Intent classified as %s: %q", decision, line)
		agentic = decision == intent.Agentic
	}

	if agentic {
		runPipeline(a, line)
		return
	}

	window := a.mem.Window(a.cfg.ActiveCategory, a.cfg.MemoryWindow)
	answer, err := a.chain.Generate(context.Background(),
		prompts.ConversationalSystemPrompt(a.cfg.Identity, window),
		line, chatMaxTokens)
	if err != nil {
		fmt.Printf("no backend could answer: %v\n", err)
		return
	}
	answer = merge.StripReasoning(answer)
	fmt.Println(answer)

	if err := a.mem.Append(a.cfg.ActiveCategory, memory.Record{Goal: line, Answer: answer}); err != nil {
		a.logger.LogError(fmt.Errorf("failed to persist chat answer: %w", err))
	}
}

func runPipeline(a *app, goal string) {
	res := a.pipe.Run(context.Background(), goal)
	fmt.Println(res.Answer)
}

func handleMemoryCommand(a *app, rest string) {
	sub, arg := splitCommand(rest)
	switch sub {
	case "", "list":
		cats, err := a.mem.Categories()
		if err != nil {
			fmt.Printf("failed to list categories: %v\n", err)
			return
		}
		if len(cats) == 0 {
			fmt.Println("no memory categories yet")
			return
		}
		for _, c := range cats {
			fmt.Printf("- %s\n", utils.CapitalizeWords(c))
		}
	case "show":
		category := arg
		if category == "" {
			category = a.cfg.ActiveCategory
		}
		records, err := a.mem.Recent(category, 5)
		if err != nil {
			fmt.Printf("failed to read memory: %v\n", err)
			return
		}
		for _, rec := range records {
			fmt.Printf("Q: %s\nA: %s\n\n", rec.Goal, utils.TruncateForDisplay(rec.Answer, 500))
		}
	case "clear":
		if arg == "" {
			fmt.Println("usage: /memory clear <category>")
			return
		}
		if !a.logger.AskForConfirmation(fmt.Sprintf("Clear memory category %q?", arg), false, false) {
			return
		}
		if err := a.mem.Clear(arg); err != nil {
			fmt.Printf("failed to clear: %v\n", err)
		}
	default:
		fmt.Println("usage: /memory [list|show [category]|clear <category>]")
	}
}

func printHelp() {
	fmt.Print(`commands:
  /plan <goal>                 run the plan/execute/merge pipeline on a goal
  /mode [auto|chat|agent]      set or cycle input routing
  /memory [list|show|clear]    inspect or clear stored memory
  /selfmod <path> <text>       request a gated self-modification
  /quit                        exit
`)
}

// splitCommand splits a line into its first word and the remainder.
func splitCommand(line string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
