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
	"log/slog"
	"os"

	"github.com/Gintonik/islanddao-governance-platform-sub004/internal/config"
	"github.com/Gintonik/islanddao-governance-platform-sub004/snapshot"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func fetchRun(ctx context.Context, cfg *config.Config) {
	logger := commonRun()
	program, err := solana.PublicKeyFromBase58(cfg.ProgramId)
	if err != nil {
		slog.Error("invalid program id: " + err.Error())
		os.Exit(1)
	}
	store, err := snapshot.New(cfg.SnapshotPath, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer store.Close()
	fetcher := snapshot.NewFetcher(cfg.RpcUrl, program, logger)
	count, err := fetcher.FetchAll(ctx, store)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"snapshot complete",
		"component", programName,
		"accounts", count,
		"path", cfg.SnapshotPath,
	)
}

func fetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Snapshot all program accounts from the configured RPC endpoint",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			fetchRun(cmd.Context(), cfg)
		},
	}
}
