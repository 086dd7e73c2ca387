// SPDX-License-Identifier: Apache-2.0

// Package driver wires the generator registry, relation store, and line
// obfuscator into a single run over either a plain SQL dump or a
// custom-format archive, and owns the run-level configuration and
// temp-file housekeeping around them.
package driver

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"sigs.k8s.io/yaml"
)

// Mode selects which codec a run uses.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModePlain  Mode = "plain"
	ModeCustom Mode = "custom"
)

// Config is the run-level configuration: locale for the built-in
// generator catalogue, the COPY body field delimiter, additional
// delete-by-pattern regular expressions, and temp file placement for the
// custom-format codec.
type Config struct {
	Mode            Mode     `env:"MODE" envDefault:"auto" json:"mode,omitempty"`
	Locale          string   `env:"LOCALE" envDefault:"en" json:"locale,omitempty"`
	Delimiter       string   `env:"DELIMITER" envDefault:"\t" json:"delimiter,omitempty"`
	DeleteByPattern []string `env:"DELETE_BY_PATTERN" envSeparator:"," json:"deleteByPattern,omitempty"`
	TmpDir          string   `env:"TMP_DIR" json:"tmpDir,omitempty"`
	TmpPrefix       string   `env:"TMP_PREFIX" envDefault:"pgmask_" json:"tmpPrefix,omitempty"`
}

// LoadEnv builds a Config from environment variables, applying defaults
// for any field left unset.
func LoadEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("driver: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// LoadFile merges a YAML config file on top of cfg, overriding any field
// the file sets explicitly. It is meant for settings unwieldy as flags or
// env vars, such as a long delete-by-pattern list.
func LoadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("driver: reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("driver: parsing config file: %w", err)
	}
	return nil
}
