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

package pipeline

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/Gintonik/islanddao-governance-platform-sub004/power"
	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNow = int64(1_700_000_000)

func testKey(n byte) solana.PublicKey {
	var b [32]byte
	for i := range b {
		b[i] = n
	}
	return solana.PublicKeyFromBytes(b[:])
}

// buildVoterAccount builds a full-size raw voter account with one used
// unlocked deposit
func buildVoterAccount(
	authority, delegate solana.PublicKey,
	amountBaseUnits uint64,
) []byte {
	data := make([]byte, vsr.VoterRecordSize)
	copy(data[8:40], authority.Bytes())
	copy(data[72:104], delegate.Bytes())
	data[104] = 1 // used
	binary.LittleEndian.PutUint64(data[104+8:], amountBaseUnits)
	return data
}

func newTestPipeline(workers int) *Pipeline {
	return New(Config{
		Params:      power.DefaultParams(),
		WorkerCount: workers,
	})
}

type memorySink struct {
	results []power.GovernancePowerResult
}

func (m *memorySink) SaveResult(
	_ context.Context,
	result *power.GovernancePowerResult,
) error {
	m.results = append(m.results, *result)
	return nil
}

func TestDecodeParallel(t *testing.T) {
	var accounts []vsr.RawAccount
	for i := byte(1); i <= 50; i++ {
		accounts = append(accounts, vsr.RawAccount{
			Address: testKey(i),
			Data:    buildVoterAccount(testKey(i), testKey(i), 1_000_000),
		})
	}
	// sprinkle in malformed accounts
	accounts = append(accounts,
		vsr.RawAccount{Address: testKey(60), Data: make([]byte, 5)},
		vsr.RawAccount{Address: testKey(61), Data: make([]byte, 999)},
	)

	p := newTestPipeline(8)
	records, skipped, err := p.Decode(context.Background(), accounts)
	require.NoError(t, err)
	assert.Len(t, records, 50)
	assert.Len(t, skipped, 2)

	// every malformed account is individually enumerable for audit
	stats := &RunStats{Skipped: skipped}
	assert.Equal(t, 2, stats.CountMalformed())
}

func TestRunIdempotent(t *testing.T) {
	var accounts []vsr.RawAccount
	for i := byte(1); i <= 20; i++ {
		accounts = append(accounts, vsr.RawAccount{
			Address: testKey(i),
			Data: buildVoterAccount(
				testKey(i%5+1),
				testKey(i%7+1),
				uint64(i)*1_000_000,
			),
		})
	}
	p := newTestPipeline(4)

	first, _, err := p.Run(context.Background(), accounts, nil, testNow)
	require.NoError(t, err)
	second, _, err := p.Run(context.Background(), accounts, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunEmitsToSink(t *testing.T) {
	wallet := testKey(1)
	accounts := []vsr.RawAccount{
		{
			Address: testKey(9),
			Data:    buildVoterAccount(wallet, wallet, 42_000_000),
		},
	}
	p := newTestPipeline(2)
	sink := &memorySink{}

	results, stats, err := p.Run(context.Background(), accounts, sink, testNow)
	require.NoError(t, err)
	assert.Equal(t, len(results), len(sink.results))
	assert.Equal(t, 1, stats.AccountsDecoded)
	assert.Equal(t, 0, stats.AccountsMalformed)

	found := false
	for _, r := range sink.results {
		if r.Wallet.Equals(wallet) {
			found = true
			assert.InDelta(t, 42.0, r.NativePower, 1e-9)
		}
	}
	assert.True(t, found)
}

func TestRunDuplicateAddressesTolerated(t *testing.T) {
	wallet := testKey(1)
	acct := vsr.RawAccount{
		Address: testKey(9),
		Data:    buildVoterAccount(wallet, wallet, 10_000_000),
	}
	p := newTestPipeline(2)

	// the same address appearing twice decodes twice and contributes
	// twice; collapsing address collisions is an input-layer concern
	results, stats, err := p.Run(
		context.Background(),
		[]vsr.RawAccount{acct, acct},
		nil,
		testNow,
	)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.AccountsDecoded)
	for _, r := range results {
		if r.Wallet.Equals(wallet) {
			assert.InDelta(t, 20.0, r.NativePower, 1e-9)
		}
	}
}

func TestWalletUniverse(t *testing.T) {
	p := newTestPipeline(1)
	records := []*vsr.VoterRecord{
		{
			Address:           testKey(9),
			Authority:         testKey(1),
			DelegateAuthority: testKey(2),
		},
		{
			Address:           testKey(8),
			Authority:         testKey(1),
			DelegateAuthority: testKey(1),
		},
	}
	wallets := p.WalletUniverse(records)
	assert.Len(t, wallets, 2)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var accounts []vsr.RawAccount
	for i := byte(1); i <= 10; i++ {
		accounts = append(accounts, vsr.RawAccount{
			Address: testKey(i),
			Data:    buildVoterAccount(testKey(i), testKey(i), 1_000_000),
		})
	}
	p := newTestPipeline(2)
	_, _, err := p.Run(ctx, accounts, nil, testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
