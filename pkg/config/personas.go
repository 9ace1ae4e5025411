package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Persona describes one named agent persona. The active persona's
// instructions feed every llm-agent subtask prompt.
type Persona struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Instructions string   `yaml:"instructions"`
	Skills       []string `yaml:"skills"`
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// DefaultPersona is used when no personas file exists or the configured
// persona is not found.
var DefaultPersona = Persona{
	Name:         "assistant",
	Description:  "general-purpose assistant",
	Instructions: "Answer precisely and directly.",
}

// LoadPersonas reads .selfai/personas.yaml. A missing file yields only the
// default persona.
func LoadPersonas() ([]Persona, error) {
	path := filepath.Join(configDirName, "personas.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Persona{DefaultPersona}, nil
		}
		return nil, fmt.Errorf("failed to read personas file: %w", err)
	}
	var pf personaFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse personas file: %w", err)
	}
	if len(pf.Personas) == 0 {
		return []Persona{DefaultPersona}, nil
	}
	return pf.Personas, nil
}

// FindPersona returns the persona with the given name, falling back to the
// default persona when the name is unknown or empty.
func FindPersona(personas []Persona, name string) Persona {
	for _, p := range personas {
		if p.Name == name {
			return p
		}
	}
	return DefaultPersona
}
