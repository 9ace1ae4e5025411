// Package tools holds the fixed tool registry available to plans. The
// dispatcher only ever executes tools present in the registry; names the
// model invents are rejected before anything runs.
package tools

import (
	"context"
	"fmt"
	"sort"
)

// Tool is one registered capability. Run returns text, typically
// JSON-encoded, which becomes the subtask output.
type Tool interface {
	Name() string
	// Description is used only for planning and documentation.
	Description() string
	Run(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry is the fixed allow-list of tools.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry pre-populated with the built-in tools.
func NewRegistry(workDir string) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	r.Register(&ListFilesTool{root: workDir})
	r.Register(&ReadFileTool{root: workDir})
	r.Register(&ShellTool{dir: workDir})
	return r
}

// Register adds a tool to the registry, replacing any tool with the same
// name.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns the named tool, or false when the name is not registered.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stringArg extracts a required string argument.
func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}
