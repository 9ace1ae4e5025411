package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// maxReadBytes caps read_file output so one huge file cannot blow up a
// merge prompt.
const maxReadBytes = 64 * 1024

// ListFilesTool lists workspace files, honoring .gitignore and
// .selfai/.ignore rules.
type ListFilesTool struct {
	root string
}

func (t *ListFilesTool) Name() string { return "list_files" }

func (t *ListFilesTool) Description() string {
	return "List files under a workspace directory (args: path, optional). Respects .gitignore."
}

func (t *ListFilesTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	sub := "."
	if v, ok := args["path"].(string); ok && v != "" {
		sub = v
	}
	start, err := resolveWithinRoot(t.root, sub)
	if err != nil {
		return "", err
	}

	rules := loadIgnoreRules(t.root)
	var files []string
	err = filepath.Walk(start, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(t.root, path)
		if relErr != nil {
			return nil
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == ".git" || base == ".selfai" {
				return filepath.SkipDir
			}
			if rules != nil && rel != "." && rules.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if rules != nil && rules.MatchesPath(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", sub, err)
	}

	out, err := json.Marshal(files)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ReadFileTool returns a file's contents, bounded by maxReadBytes.
type ReadFileTool struct {
	root string
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read a workspace file (args: path). Output is truncated past 64KB."
}

func (t *ReadFileTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	rel, err := stringArg(args, "path")
	if err != nil {
		return "", err
	}
	path, err := resolveWithinRoot(t.root, rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if len(data) > maxReadBytes {
		return string(data[:maxReadBytes]) + "\n... (truncated)", nil
	}
	return string(data), nil
}

// resolveWithinRoot joins rel onto root and refuses paths that escape it.
func resolveWithinRoot(root, rel string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(root, rel))
	if err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if abs != absRoot && !strings.HasPrefix(abs, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", rel)
	}
	return abs, nil
}

// loadIgnoreRules reads ignore files (.gitignore, .selfai/.ignore) and
// returns a combined gitignore matcher, or nil when no rules exist.
func loadIgnoreRules(rootDir string) *ignore.GitIgnore {
	var allRules []string
	for _, name := range []string{".gitignore", filepath.Join(".selfai", ".ignore")} {
		if rules, err := readIgnoreFile(filepath.Join(rootDir, name)); err == nil {
			allRules = append(allRules, rules...)
		}
	}
	if len(allRules) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(allRules...)
}

func readIgnoreFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
