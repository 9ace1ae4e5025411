package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// shellTimeout bounds one shell invocation.
const shellTimeout = 60 * time.Second

// maxShellOutput caps captured output.
const maxShellOutput = 32 * 1024

// ShellTool runs a shell command in the workspace. Destructive commands are
// refused outright; the pipeline is not the place to be deleting things.
type ShellTool struct {
	dir string
}

func (t *ShellTool) Name() string { return "shell" }

func (t *ShellTool) Description() string {
	return "Run a shell command in the workspace (args: command). Destructive commands are refused."
}

func (t *ShellTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	command, err := stringArg(args, "command")
	if err != nil {
		return "", err
	}
	if dc, destructive := IsDestructiveCommand(command); destructive {
		return "", fmt.Errorf("refusing destructive command (%s): %s", dc.Description, command)
	}

	ctx, cancel := context.WithTimeout(ctx, shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = t.dir
	out, err := cmd.CombinedOutput()
	result := string(out)
	if len(result) > maxShellOutput {
		result = result[:maxShellOutput] + "\n... (truncated)"
	}
	if err != nil {
		return "", fmt.Errorf("command failed: %w\n%s", err, strings.TrimSpace(result))
	}
	return result, nil
}
