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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Gintonik/islanddao-governance-platform-sub004/alias"
	"github.com/Gintonik/islanddao-governance-platform-sub004/internal/config"
	"github.com/Gintonik/islanddao-governance-platform-sub004/pipeline"
	"github.com/Gintonik/islanddao-governance-platform-sub004/snapshot"
	"github.com/Gintonik/islanddao-governance-platform-sub004/store"
	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// startMetricsListener serves prometheus metrics for the duration of the
// run so external schedulers can scrape progress. Best effort; a failed
// listener never aborts the run.
func startMetricsListener(cfg *config.Config, logger *slog.Logger) {
	if cfg.MetricsPort == 0 {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.MetricsPort),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	logger.Info(
		"serving prometheus metrics on "+metricsServer.Addr,
		"component", programName,
	)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Warn(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", programName,
			)
		}
	}()
}

func loadAliases(cfg *config.Config) (*alias.AliasSet, error) {
	if cfg.AliasFile == "" {
		return alias.NewAliasSet(nil), nil
	}
	return alias.NewAliasSetFromFile(cfg.AliasFile)
}

func loadSnapshot(cfg *config.Config, logger *slog.Logger) ([]vsr.RawAccount, error) {
	snapStore, err := snapshot.New(cfg.SnapshotPath, logger)
	if err != nil {
		return nil, err
	}
	defer snapStore.Close()
	var accounts []vsr.RawAccount
	err = snapStore.ForEach(func(acct vsr.RawAccount) error {
		accounts = append(accounts, acct)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func runRun(ctx context.Context, cfg *config.Config) {
	logger := commonRun()
	startMetricsListener(cfg, logger)
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
	resultStore, err := store.New(cfg.DatabasePath, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer resultStore.Close()
	p := pipeline.New(pipeline.Config{
		Logger:       logger,
		PromRegistry: prometheus.DefaultRegisterer,
		Aliases:      aliases,
		Params:       cfg.PowerParams(),
		WorkerCount:  cfg.Workers,
	})
	_, stats, err := p.Run(ctx, accounts, resultStore, time.Now().Unix())
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	for _, skip := range stats.Skipped {
		logger.Warn(
			"account skipped during run",
			"component", programName,
			"address", skip.Address.String(),
			"error", skip.Err.Error(),
		)
	}
	logger.Info(
		"governance power run complete",
		"component", programName,
		"decoded", stats.AccountsDecoded,
		"malformed", stats.AccountsMalformed,
		"wallets", stats.WalletsProcessed,
	)
}

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Compute and persist governance power for every wallet in the snapshot",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			runRun(cmd.Context(), cfg)
		},
	}
}
