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

package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	fetchMaxAttempts   = 5
	fetchRetryInterval = 2 * time.Second
)

// accountFetcher is the subset of the RPC client used by Fetcher
type accountFetcher interface {
	GetProgramAccountsWithOpts(
		ctx context.Context,
		publicKey solana.PublicKey,
		opts *rpc.GetProgramAccountsOpts,
	) (rpc.GetProgramAccountsResult, error)
}

// Fetcher snapshots all accounts of one program identity into a Store.
// Retries, rate limiting and timeouts belong here, never interleaved
// with the decode pipeline.
type Fetcher struct {
	client  accountFetcher
	program solana.PublicKey
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher for the given RPC endpoint and program
func NewFetcher(
	rpcURL string,
	program solana.PublicKey,
	logger *slog.Logger,
) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Fetcher{
		client:  rpc.New(rpcURL),
		program: program,
		logger:  logger.With("component", "snapshot"),
	}
}

// FetchAll pulls every program account matching a known record size and
// writes it into store. One RPC call is made per known size, since the
// record format is keyed by exact account length. Returns the number of
// accounts snapshotted.
func (f *Fetcher) FetchAll(ctx context.Context, store *Store) (int, error) {
	total := 0
	for _, size := range []uint64{
		vsr.VoterRecordSize,
		vsr.DelegationRecordSize,
	} {
		accounts, err := f.fetchBySize(ctx, size)
		if err != nil {
			return total, fmt.Errorf(
				"failed to fetch accounts of size %d: %w",
				size,
				err,
			)
		}
		for _, acct := range accounts {
			data := acct.Account.Data.GetBinary()
			if err := store.Put(acct.Pubkey, data); err != nil {
				return total, fmt.Errorf(
					"failed to store account %s: %w",
					acct.Pubkey,
					err,
				)
			}
			total++
		}
		f.logger.Info(
			"snapshotted program accounts",
			"program", f.program.String(),
			"size", size,
			"count", len(accounts),
		)
	}
	return total, nil
}

// fetchBySize requests all program accounts of one exact data size,
// retrying transient RPC failures with a fixed interval.
func (f *Fetcher) fetchBySize(
	ctx context.Context,
	size uint64,
) (rpc.GetProgramAccountsResult, error) {
	opts := &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentFinalized,
		Filters: []rpc.RPCFilter{
			{DataSize: size},
		},
	}
	var lastErr error
	for attempt := 1; attempt <= fetchMaxAttempts; attempt++ {
		accounts, err := f.client.GetProgramAccountsWithOpts(
			ctx,
			f.program,
			opts,
		)
		if err == nil {
			return accounts, nil
		}
		lastErr = err
		f.logger.Warn(
			"program account fetch failed",
			"attempt", attempt,
			"size", size,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(fetchRetryInterval):
		}
	}
	return nil, lastErr
}
