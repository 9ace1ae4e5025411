// Package selfmod gates self-modification requests. Every target path is
// classified against three static lists — protected, sensitive, allowed —
// before any external coding agent touches it; a path matching none of the
// lists is refused (fail-closed).
package selfmod

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/selfai-agent/selfai/pkg/config"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// Class is the outcome of classifying one file path.
type Class int

const (
	// Unclassified paths match no list and are refused by default.
	Unclassified Class = iota
	// Protected paths are never modified.
	Protected
	// Sensitive paths require an affirmative human confirmation each time.
	Sensitive
	// Allowed paths are modified without prompting.
	Allowed
)

func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case Sensitive:
		return "sensitive"
	case Allowed:
		return "allowed"
	default:
		return "unclassified"
	}
}

// Refusal reasons, asserted on by callers and tests.
var (
	ErrProtected       = errors.New("path is protected")
	ErrSensitiveDenied = errors.New("sensitive modification denied by user")
	ErrUnclassified    = errors.New("path matches no safety list, refusing by default")
)

// Gate evaluates the ordered safety rules: protected, then sensitive, then
// allowed, then default deny. The lists are read fresh from config on every
// check, so a list change takes effect on the next attempt.
type Gate struct {
	safety  config.SafetyConfig
	logger  *utils.Logger
	confirm func(prompt string) bool
}

// NewGate creates a gate over the configured safety lists. confirm may be
// nil, in which case the logger's confirmation prompt is used.
func NewGate(safety config.SafetyConfig, logger *utils.Logger, confirm func(prompt string) bool) *Gate {
	g := &Gate{safety: safety, logger: logger, confirm: confirm}
	if g.confirm == nil {
		g.confirm = func(prompt string) bool {
			return logger.AskForConfirmation(prompt, false, true)
		}
	}
	return g
}

// Classify maps a path to exactly one class. The protected check dominates:
// a path matching both protected and allowed is protected. Rules match by
// substring, or by glob when the rule contains glob metacharacters.
func (g *Gate) Classify(path string) Class {
	normalized := filepath.ToSlash(path)
	switch {
	case matchesAny(normalized, g.safety.Protected):
		return Protected
	case matchesAny(normalized, g.safety.Sensitive):
		return Sensitive
	case matchesAny(normalized, g.safety.Allowed):
		return Allowed
	default:
		return Unclassified
	}
}

// Authorize decides whether a modification of path may proceed. Every
// decision is logged with the path and resulting class so refused and
// approved attempts stay auditable.
func (g *Gate) Authorize(path string) error {
	class := g.Classify(path)
	g.logger.Logf("Self-modification gate: path=%s class=%s", path, class)

	switch class {
	case Protected:
		g.logger.LogProcessStep(fmt.Sprintf("🛑 Refusing modification of protected path: %s", path))
		return fmt.Errorf("%w: %s", ErrProtected, path)
	case Sensitive:
		ok := g.confirm(fmt.Sprintf("Path %s is sensitive. Allow modification?", path))
		if !ok {
			g.logger.Logf("Self-modification gate: path=%s sensitive-denied", path)
			g.logger.LogProcessStep(fmt.Sprintf("🛑 Sensitive modification denied: %s", path))
			return fmt.Errorf("%w: %s", ErrSensitiveDenied, path)
		}
		g.logger.Logf("Self-modification gate: path=%s sensitive-confirmed", path)
		return nil
	case Allowed:
		return nil
	default:
		g.logger.LogProcessStep(fmt.Sprintf("🛑 Refusing modification of unclassified path: %s", path))
		return fmt.Errorf("%w: %s", ErrUnclassified, path)
	}
}

// matchesAny reports whether path matches any rule. A rule with glob
// metacharacters is matched against the full path and the base name;
// anything else is a substring match.
func matchesAny(path string, rules []string) bool {
	base := filepath.Base(path)
	for _, rule := range rules {
		rule = filepath.ToSlash(strings.TrimSpace(rule))
		if rule == "" {
			continue
		}
		if strings.ContainsAny(rule, "*?[") {
			if ok, _ := filepath.Match(rule, path); ok {
				return true
			}
			if ok, _ := filepath.Match(rule, base); ok {
				return true
			}
			continue
		}
		if strings.Contains(path, rule) {
			return true
		}
	}
	return false
}
