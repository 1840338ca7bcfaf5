// Package project loads emit project files: a YAML or JSON mirror of
// the compilation request, plus CLI-only knobs like the output
// directory. The CLI resolves one project file per invocation; library
// callers construct requests directly.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-emit/pkg/orchestrator"
)

// Config mirrors the orchestrator request with output options added.
type Config struct {
	Bundle          string            `yaml:"bundle" json:"bundle"`
	Check           *bool             `yaml:"check" json:"check"`
	CompilerOptions map[string]any    `yaml:"compilerOptions" json:"compilerOptions"`
	ImportMap       any               `yaml:"importMap" json:"importMap"`
	ImportMapPath   string            `yaml:"importMapPath" json:"importMapPath"`
	RootSpecifier   string            `yaml:"rootSpecifier" json:"rootSpecifier"`
	Sources         map[string]string `yaml:"sources" json:"sources"`

	// OutDir receives emitted files; empty means stdout listing only.
	OutDir string `yaml:"outDir" json:"outDir"`
}

// Load reads a project file, choosing the parser by extension:
// .yaml/.yml use YAML, .json uses JSON.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, errors.New("project: config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("project: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("project: parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("project: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("project: unsupported config extension %q", filepath.Ext(path))
	}

	if cfg.RootSpecifier == "" {
		return Config{}, fmt.Errorf("project: %s: rootSpecifier is required", path)
	}
	return cfg, nil
}

// Request converts the config into an orchestrator request.
func (c Config) Request() orchestrator.Request {
	return orchestrator.Request{
		Bundle:          c.Bundle,
		Check:           c.Check,
		CompilerOptions: c.CompilerOptions,
		ImportMap:       c.ImportMap,
		ImportMapPath:   c.ImportMapPath,
		RootSpecifier:   c.RootSpecifier,
		Sources:         c.Sources,
	}
}
