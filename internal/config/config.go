// Package config reads and writes levmatch.yaml, the workspace
// configuration created by levmatch init.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/levmatch/levmatch/internal/model"
)

// Config represents the top-level levmatch.yaml configuration.
type Config struct {
	Company  CompanyConfig  `yaml:"company"`
	Accounts AccountsConfig `yaml:"accounts"`
	Matching MatchingConfig `yaml:"matching"`
	Report   ReportConfig   `yaml:"report"`
	Git      GitConfig      `yaml:"git"`
}

// CompanyConfig identifies the audited company.
type CompanyConfig struct {
	Name      string `yaml:"name"`
	OrgNumber string `yaml:"org_number,omitempty"`
}

// AccountsConfig overrides the reconciled account numbers.
type AccountsConfig struct {
	Payable string `yaml:"payable"`
	Bank    string `yaml:"bank"`
}

// MatchingConfig controls the matching thresholds.
type MatchingConfig struct {
	MaxDays         int     `yaml:"max_days"`
	AmountTolerance float64 `yaml:"amount_tolerance"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Currency  string `yaml:"currency"`
}

// GitConfig controls the report audit trail.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a levmatch.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(companyName string) *Config {
	return &Config{
		Company: CompanyConfig{
			Name: companyName,
		},
		Accounts: AccountsConfig{
			Payable: "2440",
			Bank:    "1930",
		},
		Matching: MatchingConfig{
			MaxDays:         120,
			AmountTolerance: 0.005,
		},
		Report: ReportConfig{
			OutputDir: "reports",
			Currency:  "SEK",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "levmatch",
			AuthorEmail: "reports@levmatch.dev",
		},
	}
}

// Rules bridges the workspace configuration to the engine configuration
// for one target year. Unset fields keep the engine defaults.
func (c *Config) Rules(targetYear int) model.Config {
	rules := model.DefaultConfig()
	rules.TargetYear = targetYear
	if c.Accounts.Payable != "" {
		rules.APAccount = c.Accounts.Payable
	}
	if c.Accounts.Bank != "" {
		rules.BankAccount = c.Accounts.Bank
	}
	if c.Matching.MaxDays > 0 {
		rules.MaxDays = c.Matching.MaxDays
	}
	if c.Matching.AmountTolerance > 0 {
		rules.AmountTolerance = decimal.NewFromFloat(c.Matching.AmountTolerance)
	}
	return rules
}
