package expand

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/extdot/internal"
	"github.com/gnoswap-labs/extdot/internal/extdot"
	tt "github.com/gnoswap-labs/extdot/internal/types"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".extdot.yaml"

// Config represents the content of the configuration file.
type Config struct {
	Name            string                   `yaml:"name"`
	Mode            string                   `yaml:"mode"`
	Placeholder     string                   `yaml:"placeholder"`
	Crate           string                   `yaml:"crate"`
	Hygienic        *bool                    `yaml:"hygienic,omitempty"`
	Binding         string                   `yaml:"binding"`
	Assign          string                   `yaml:"assign"`
	Terminator      string                   `yaml:"terminator"`
	Extensions      []string                 `yaml:"extensions"`
	OutputExtension string                   `yaml:"output_extension"`
	Rules           map[string]tt.ConfigRule `yaml:"rules"`
}

func DefaultConfig() Config {
	opts := extdot.DefaultOptions()
	hygienic := true
	return Config{
		Name:            "extdot",
		Mode:            internal.ModeSites.String(),
		Placeholder:     opts.Placeholder,
		Crate:           opts.Crate,
		Hygienic:        &hygienic,
		Binding:         opts.Binding,
		Assign:          opts.Assign,
		Terminator:      opts.Terminator,
		Extensions:      append([]string(nil), internal.DefaultExtensions...),
		OutputExtension: ".expanded.rs",
		Rules: map[string]tt.ConfigRule{
			extdot.RuleEmptyBody: {Severity: opts.EmptyBody},
		},
	}
}

// LoadConfig reads the configuration file at path. Keys absent from the
// file keep their default value; a missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("error reading config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	return config, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EngineOptions converts the configuration into engine options.
func (c Config) EngineOptions() (internal.EngineOptions, error) {
	mode, err := internal.ParseMode(c.Mode)
	if err != nil {
		return internal.EngineOptions{}, err
	}

	opts := extdot.Options{
		Placeholder: c.Placeholder,
		Crate:       c.Crate,
		Binding:     c.Binding,
		Assign:      c.Assign,
		Terminator:  c.Terminator,
		EmptyBody:   extdot.DefaultOptions().EmptyBody,
	}
	for name, rule := range c.Rules {
		switch name {
		case extdot.RuleEmptyBody:
			opts.EmptyBody = rule.Severity
		default:
			return internal.EngineOptions{}, fmt.Errorf("unknown rule %q", name)
		}
	}

	hygienic := true
	if c.Hygienic != nil {
		hygienic = *c.Hygienic
	}

	return internal.EngineOptions{
		Options:         opts,
		Mode:            mode,
		Hygienic:        hygienic,
		Extensions:      c.Extensions,
		OutputExtension: c.OutputExtension,
	}, nil
}
