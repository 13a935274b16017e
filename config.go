package decker

import (
	"fmt"
	"strings"
)

// Config is a serialisable representation of the assembly configuration. It
// can be populated from JSON, YAML, environment variables, etc. The
// zero-value is useful – all nested fields inherit their package defaults.

type Config struct {
	Fragments FragmentsConfig `json:"fragments" yaml:"fragments"`
	Outline   OutlineConfig   `json:"outline" yaml:"outline"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	Publish   PublishConfig   `json:"publish" yaml:"publish"`
}

type FragmentsConfig struct {
	Roots      []string `json:"roots" yaml:"roots"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

type OutlineConfig struct {
	RootNodeName string `json:"rootNodeName" yaml:"rootNodeName"`
}

type OutputConfig struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

type PublishConfig struct {
	RootURL string   `json:"rootURL" yaml:"rootURL"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// DefaultConfig returns a Config populated with the same default values the
// constructors apply. Callers may modify the returned struct before passing
// it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Fragments: FragmentsConfig{
			Roots:      []string{"."},
			Extensions: []string{".rst", ".md"},
		},
		Outline: OutlineConfig{
			RootNodeName: "deck",
		},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	for _, ext := range c.Fragments.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("fragments.extensions entry %q must start with '.'", ext)
		}
	}
	return nil
}
