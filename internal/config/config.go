package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds workspace-level settings loaded from slngraph.yml.
type ProjectConfig struct {
	// ExcludeDirs adds gitignore-style patterns on top of the built-in
	// bin/obj/.vs exclusions.
	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`
	// Fast skips usage and namespace-import edges during builds.
	Fast      bool   `yaml:"fast,omitempty"`
	OutputDir string `yaml:"outputDir,omitempty"`
	Verbose   bool   `yaml:"verbose,omitempty"`
}

// Load attempts to read slngraph.yml or slngraph.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"slngraph.yml", "slngraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
