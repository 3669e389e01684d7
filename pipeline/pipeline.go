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

// Package pipeline orchestrates one full governance power pass: parallel
// decode of a raw account snapshot, per-wallet aggregation, and emission
// of results to a sink. The pipeline is read-only and idempotent; running
// it twice over the same snapshot yields identical results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/Gintonik/islanddao-governance-platform-sub004/alias"
	"github.com/Gintonik/islanddao-governance-platform-sub004/power"
	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultWorkerCount = 4

// ResultSink receives one result per processed wallet. The pipeline has
// no knowledge of the storage format behind the sink.
type ResultSink interface {
	SaveResult(ctx context.Context, result *power.GovernancePowerResult) error
}

// SkippedAccount records one account that failed to decode, retained so
// every malformed account is individually enumerable for audit.
type SkippedAccount struct {
	Address solana.PublicKey
	Err     error
}

// RunStats summarizes one pipeline pass
type RunStats struct {
	AccountsDecoded   int
	AccountsMalformed int
	WalletsProcessed  int
	Skipped           []SkippedAccount
}

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Aliases      *alias.AliasSet
	Params       power.Params
	WorkerCount  int
}

type Pipeline struct {
	logger  *slog.Logger
	aliases *alias.AliasSet
	params  power.Params
	workers int
	metrics pipelineMetrics
}

func New(cfg Config) *Pipeline {
	p := &Pipeline{
		aliases: cfg.Aliases,
		params:  cfg.Params,
		workers: cfg.WorkerCount,
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		p.logger = cfg.Logger.With("component", "pipeline")
	}
	if p.workers <= 0 {
		p.workers = DefaultWorkerCount
	}
	if p.aliases == nil {
		p.aliases = alias.NewAliasSet(nil)
	}
	p.initMetrics(cfg.PromRegistry)
	return p
}

// Decode decodes every raw account concurrently across the worker pool.
// Decoding is embarrassingly parallel: no shared mutable state exists per
// account, so only the collected outputs are lock-protected. Per-account
// decode failures are logged with the offending address and collected,
// never fatal to the batch.
func (p *Pipeline) Decode(
	ctx context.Context,
	accounts []vsr.RawAccount,
) ([]*vsr.VoterRecord, []SkippedAccount, error) {
	var (
		mu      sync.Mutex
		records []*vsr.VoterRecord
		skipped []SkippedAccount
		wg      sync.WaitGroup
	)
	work := make(chan vsr.RawAccount)
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for acct := range work {
				record, err := vsr.Decode(acct)
				mu.Lock()
				if err != nil {
					p.logger.Warn(
						"skipping malformed account",
						"address", acct.Address.String(),
						"error", err,
					)
					skipped = append(skipped, SkippedAccount{
						Address: acct.Address,
						Err:     err,
					})
					p.metrics.accountsMalformed.Inc()
				} else {
					records = append(records, record)
					p.metrics.accountsDecoded.Inc()
				}
				mu.Unlock()
			}
		}()
	}
	var feedErr error
feed:
	for _, acct := range accounts {
		select {
		case <-ctx.Done():
			feedErr = ctx.Err()
			break feed
		case work <- acct:
		}
	}
	close(work)
	wg.Wait()
	if feedErr != nil {
		return nil, nil, feedErr
	}
	// Parallel decode order is nondeterministic; restore a stable order
	// so repeated runs over the same snapshot are byte-identical
	sort.Slice(records, func(i, j int) bool {
		return records[i].Address.String() < records[j].Address.String()
	})
	sort.Slice(skipped, func(i, j int) bool {
		return skipped[i].Address.String() < skipped[j].Address.String()
	})
	return records, skipped, nil
}

// WalletUniverse returns every distinct wallet that appears as an
// authority or delegate authority across the decoded records,
// canonicalized through the alias set and sorted for stable output.
func (p *Pipeline) WalletUniverse(
	records []*vsr.VoterRecord,
) []solana.PublicKey {
	seen := make(map[solana.PublicKey]struct{})
	for _, record := range records {
		seen[p.aliases.Canonical(record.Authority)] = struct{}{}
		seen[p.aliases.Canonical(record.DelegateAuthority)] = struct{}{}
	}
	wallets := make([]solana.PublicKey, 0, len(seen))
	for wallet := range seen {
		wallets = append(wallets, wallet)
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].String() < wallets[j].String()
	})
	return wallets
}

// Run executes one full pass: decode all accounts, derive the wallet
// universe, aggregate power per wallet (single-threaded reduction over
// the decoded records), and emit each result to sink. A nil sink
// computes without persisting.
func (p *Pipeline) Run(
	ctx context.Context,
	accounts []vsr.RawAccount,
	sink ResultSink,
	now int64,
) ([]power.GovernancePowerResult, *RunStats, error) {
	records, skipped, err := p.Decode(ctx, accounts)
	if err != nil {
		return nil, nil, err
	}
	stats := &RunStats{
		AccountsDecoded:   len(records),
		AccountsMalformed: len(skipped),
		Skipped:           skipped,
	}
	wallets := p.WalletUniverse(records)
	results := make([]power.GovernancePowerResult, 0, len(wallets))
	for _, wallet := range wallets {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		result := power.Aggregate(records, wallet, p.aliases, p.params, now)
		if result.InvalidLockups > 0 {
			p.logger.Warn(
				"wallet has deposits with invalid lockup schedules",
				"wallet", wallet.String(),
				"count", result.InvalidLockups,
			)
		}
		if sink != nil {
			if err := sink.SaveResult(ctx, &result); err != nil {
				return nil, nil, fmt.Errorf(
					"failed to persist result for wallet %s: %w",
					wallet,
					err,
				)
			}
		}
		results = append(results, result)
		p.metrics.resultsEmitted.Inc()
	}
	stats.WalletsProcessed = len(results)
	p.logger.Info(
		"pipeline pass complete",
		"decoded", stats.AccountsDecoded,
		"malformed", stats.AccountsMalformed,
		"wallets", stats.WalletsProcessed,
	)
	return results, stats, nil
}

// CountMalformed returns how many skipped accounts wrap the malformed
// account sentinel, as opposed to other decode failures.
func (s *RunStats) CountMalformed() int {
	count := 0
	for _, skip := range s.Skipped {
		if errors.Is(skip.Err, vsr.ErrMalformedAccount) {
			count++
		}
	}
	return count
}
