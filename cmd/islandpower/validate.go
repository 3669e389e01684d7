// Copyright 2026 IslandDAO
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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Gintonik/islanddao-governance-platform-sub004/internal/config"
	"github.com/Gintonik/islanddao-governance-platform-sub004/pipeline"
	"github.com/Gintonik/islanddao-governance-platform-sub004/validate"
	"github.com/spf13/cobra"
)

func validateRun(ctx context.Context, cfg *config.Config) {
	logger := commonRun()
	if cfg.FixtureFile == "" {
		slog.Error("fixture file required (via fixtureFile config)")
		os.Exit(1)
	}
	fixtures, tolerance, err := validate.LoadFixturesFromFile(cfg.FixtureFile)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	aliases, err := loadAliases(cfg)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	accounts, err := loadSnapshot(cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	p := pipeline.New(pipeline.Config{
		Logger:      logger,
		Aliases:     aliases,
		Params:      cfg.PowerParams(),
		WorkerCount: cfg.Workers,
	})
	records, skipped, err := p.Decode(ctx, accounts)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	for _, skip := range skipped {
		logger.Warn(
			"account skipped during validation",
			"component", programName,
			"address", skip.Address.String(),
			"error", skip.Err.Error(),
		)
	}
	report := validate.Run(
		records,
		fixtures,
		aliases,
		cfg.PowerParams(),
		time.Now().Unix(),
		tolerance,
	)
	fmt.Print(report.String())
	if !report.Pass() {
		logger.Error(
			"validation failed",
			"component", programName,
			"failures", len(report.Failures()),
			"fixtures", len(report.Rows),
		)
		os.Exit(1)
	}
	logger.Info(
		"validation passed",
		"component", programName,
		"fixtures", len(report.Rows),
	)
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the pipeline against fixture wallets with known expected power",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			validateRun(cmd.Context(), cfg)
		},
	}
}
