package selfmod

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/selfai-agent/selfai/pkg/utils"
)

// Runner invokes the external coding agent (aider, openhands) on a gated
// file. Flow per request: authorize, back up, run the agent, show a diff
// of what it did.
type Runner struct {
	gate    *Gate
	command []string
	logger  *utils.Logger
}

// NewRunner creates a runner around the gate and the configured external
// command line.
func NewRunner(gate *Gate, command []string, logger *utils.Logger) *Runner {
	return &Runner{gate: gate, command: command, logger: logger}
}

// Modify requests a modification of path with the given instruction. The
// gate decides first; no mutating call happens on refusal.
func (r *Runner) Modify(ctx context.Context, path, instruction string) error {
	if err := r.gate.Authorize(path); err != nil {
		return err
	}
	if len(r.command) == 0 {
		return fmt.Errorf("no external modification command configured")
	}

	backupPath, err := BackupFile(path)
	if err != nil {
		return fmt.Errorf("refusing to modify without a backup: %w", err)
	}
	if backupPath != "" {
		r.logger.Logf("Backed up %s to %s", path, backupPath)
	}

	original, _ := os.ReadFile(path)

	if err := r.runExternal(ctx, path, instruction); err != nil {
		return fmt.Errorf("external modification tool failed: %w", err)
	}

	modified, _ := os.ReadFile(path)
	r.showDiff(path, string(original), string(modified))
	return nil
}

// buildCommandArgs expands the configured command line for one request.
// "{instruction}" and "{path}" arguments are substituted in place; when a
// placeholder is absent the value is appended as a trailing argument, so a
// bare command like ["my-agent"] still receives both. This keeps the flag
// spelling (aider's --message, openhands' --task, ...) in configuration
// instead of in code.
func buildCommandArgs(command []string, path, instruction string) []string {
	args := make([]string, 0, len(command)+1)
	sawInstruction, sawPath := false, false
	for _, a := range command[1:] {
		switch a {
		case "{instruction}":
			args = append(args, instruction)
			sawInstruction = true
		case "{path}":
			args = append(args, path)
			sawPath = true
		default:
			args = append(args, a)
		}
	}
	if !sawInstruction {
		args = append(args, instruction)
	}
	if !sawPath {
		args = append(args, path)
	}
	return args
}

// runExternal executes the coding agent under a pty so its interactive
// progress output streams to the terminal.
func (r *Runner) runExternal(ctx context.Context, path, instruction string) error {
	args := buildCommandArgs(r.command, path, instruction)

	r.logger.LogProcessStep(fmt.Sprintf("Running %s on %s", r.command[0], path))
	cmd := exec.CommandContext(ctx, r.command[0], args...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		// Not every environment has a pty (CI, pipes); fall back to a
		// plain pipe run with a fresh command.
		fallback := exec.CommandContext(ctx, r.command[0], args...)
		out, runErr := fallback.CombinedOutput()
		if len(out) > 0 {
			fmt.Print(string(out))
		}
		return runErr
	}
	defer ptmx.Close()

	_, _ = io.Copy(os.Stdout, ptmx)
	return cmd.Wait()
}

// showDiff prints a colorized summary of what the external tool changed.
func (r *Runner) showDiff(path, original, modified string) {
	if original == modified {
		r.logger.LogProcessStep(fmt.Sprintf("No changes made to %s", path))
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, modified, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	additions, deletions := 0, 0
	for _, d := range diffs {
		lines := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			additions += lines + 1
		case diffmatchpatch.DiffDelete:
			deletions += lines + 1
		}
	}
	r.logger.LogProcessStep(fmt.Sprintf("Modified %s (+%d/-%d)", path, additions, deletions))
	fmt.Print(dmp.DiffPrettyText(diffs))
}
