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
	"io"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeFetcher returns canned program accounts keyed by the DataSize filter
type fakeFetcher struct {
	bySize map[uint64]rpc.GetProgramAccountsResult
	calls  []uint64
}

func (f *fakeFetcher) GetProgramAccountsWithOpts(
	_ context.Context,
	_ solana.PublicKey,
	opts *rpc.GetProgramAccountsOpts,
) (rpc.GetProgramAccountsResult, error) {
	size := opts.Filters[0].DataSize
	f.calls = append(f.calls, size)
	return f.bySize[size], nil
}

func keyedAccount(addr solana.PublicKey, data []byte) *rpc.KeyedAccount {
	return &rpc.KeyedAccount{
		Pubkey: addr,
		Account: &rpc.Account{
			Data: rpc.DataBytesOrJSONFromBytes(data),
		},
	}
}

func TestFetchAll(t *testing.T) {
	store := setupTestStore(t)
	fake := &fakeFetcher{
		bySize: map[uint64]rpc.GetProgramAccountsResult{
			1384: {
				keyedAccount(testKey(1), make([]byte, 1384)),
				keyedAccount(testKey(2), make([]byte, 1384)),
			},
			72: {
				keyedAccount(testKey(3), make([]byte, 72)),
			},
		},
	}
	f := &Fetcher{
		client:  fake,
		program: testKey(7),
		logger:  discardLogger(),
	}

	count, err := f.FetchAll(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	// one call per known record size
	assert.Equal(t, []uint64{1384, 72}, fake.calls)

	stored, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, stored)
}
