package tools

import (
	"regexp"
	"strings"
)

// DestructiveCommand represents a potentially destructive command pattern.
type DestructiveCommand struct {
	Pattern     string
	Description string
	RiskLevel   string // "high", "medium", "low"
}

// DestructiveCommands lists patterns that match potentially destructive
// commands. The shell tool refuses any match regardless of risk level; the
// level only grades the refusal message.
var DestructiveCommands = []DestructiveCommand{
	// High risk - irreversible data loss
	{Pattern: `^\s*rm\s+-rf?\s+`, Description: "Recursive file deletion", RiskLevel: "high"},
	{Pattern: `^\s*rm\s+-fr\s+`, Description: "Recursive file deletion", RiskLevel: "high"},
	{Pattern: `^\s*rm\s+.*\*`, Description: "Wildcard file deletion", RiskLevel: "high"},
	{Pattern: `^\s*rmdir\s+`, Description: "Directory deletion", RiskLevel: "high"},
	{Pattern: `^\s*dd\s+`, Description: "Disk/device manipulation", RiskLevel: "high"},
	{Pattern: `^\s*>\s+`, Description: "File truncation/overwrite", RiskLevel: "high"},

	// Medium risk - data modification
	{Pattern: `^\s*git\s+reset\s+--hard`, Description: "Hard git reset", RiskLevel: "medium"},
	{Pattern: `^\s*git\s+clean\s+-fd`, Description: "Git clean with force", RiskLevel: "medium"},
	{Pattern: `^\s*chmod\s+[0-7]{3,4}\s+`, Description: "File permission changes", RiskLevel: "medium"},
	{Pattern: `^\s*chown\s+`, Description: "File ownership changes", RiskLevel: "medium"},

	// Low risk - system operations
	{Pattern: `^\s*kill\s+`, Description: "Process termination", RiskLevel: "low"},
	{Pattern: `^\s*pkill\s+`, Description: "Process termination by name", RiskLevel: "low"},
	{Pattern: `^\s*reboot\b`, Description: "System reboot", RiskLevel: "low"},
	{Pattern: `^\s*shutdown\b`, Description: "System shutdown", RiskLevel: "low"},
}

// IsDestructiveCommand checks if a command is potentially destructive.
func IsDestructiveCommand(command string) (*DestructiveCommand, bool) {
	command = strings.TrimSpace(command)
	for i := range DestructiveCommands {
		regex := regexp.MustCompile(DestructiveCommands[i].Pattern)
		if regex.MatchString(command) {
			return &DestructiveCommands[i], true
		}
	}
	return nil, false
}

// GetCommandRiskLevel returns the risk level of a command, "none" when no
// pattern matches.
func GetCommandRiskLevel(command string) string {
	if dc, destructive := IsDestructiveCommand(command); destructive {
		return dc.RiskLevel
	}
	return "none"
}
