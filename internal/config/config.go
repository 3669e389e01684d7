// Copyright 2025 IslandDAO
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Gintonik/islanddao-governance-platform-sub004/power"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "islandpower.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// GovernanceParams carries the lockup bonus protocol parameters. These
// are protocol configuration, not universal constants; absent an
// authoritative governance parameter record the documented defaults
// apply.
type GovernanceParams struct {
	SecondsPerYear   int64   `yaml:"secondsPerYear"   envconfig:"ISLANDPOWER_SECONDS_PER_YEAR"`
	MaxBonusYears    float64 `yaml:"maxBonusYears"    envconfig:"ISLANDPOWER_MAX_BONUS_YEARS"`
	MaxMultiplierCap float64 `yaml:"maxMultiplierCap" envconfig:"ISLANDPOWER_MAX_MULTIPLIER_CAP"`
}

type Config struct {
	RpcUrl       string           `yaml:"rpcUrl"       envconfig:"ISLANDPOWER_RPC_URL"`
	ProgramId    string           `yaml:"programId"    envconfig:"ISLANDPOWER_PROGRAM_ID"`
	SnapshotPath string           `yaml:"snapshotPath"                                   split_words:"true"`
	DatabasePath string           `yaml:"databasePath"                                   split_words:"true"`
	AliasFile    string           `yaml:"aliasFile"                                      split_words:"true"`
	FixtureFile  string           `yaml:"fixtureFile"                                    split_words:"true"`
	MetricsPort  uint             `yaml:"metricsPort"                                    split_words:"true"`
	Workers      int              `yaml:"workers"      envconfig:"ISLANDPOWER_WORKERS"`
	Governance   GovernanceParams `yaml:"governance"`
}

// PowerParams converts the governance config section to power.Params
func (c *Config) PowerParams() power.Params {
	return power.Params{
		SecondsPerYear:   c.Governance.SecondsPerYear,
		MaxBonusYears:    c.Governance.MaxBonusYears,
		MaxMultiplierCap: c.Governance.MaxMultiplierCap,
	}
}

var globalConfig = &Config{
	RpcUrl:       "https://api.mainnet-beta.solana.com",
	ProgramId:    "vsr2nfGVNHmSY8uxoBGqq8AQbwz3JwaEaHqGbsTPXqQ",
	SnapshotPath: ".islandpower/snapshot",
	DatabasePath: ".islandpower/db",
	AliasFile:    "",
	FixtureFile:  "",
	MetricsPort:  12798,
	Workers:      4,
	Governance: GovernanceParams{
		SecondsPerYear:   31556952,
		MaxBonusYears:    4,
		MaxMultiplierCap: 5.0,
	},
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.islandpower/islandpower.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(
				homeDir,
				".islandpower",
				"islandpower.yaml",
			)
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/islandpower/islandpower.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/islandpower/islandpower.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Load config values from environment variables
	// We use "dummy" as the app name to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	return globalConfig, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
