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

package power

import (
	"testing"

	"github.com/Gintonik/islanddao-governance-platform-sub004/alias"
	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(n byte) solana.PublicKey {
	var b [32]byte
	for i := range b {
		b[i] = n
	}
	return solana.PublicKeyFromBytes(b[:])
}

func noAliases() *alias.AliasSet {
	return alias.NewAliasSet(nil)
}

func unlockedDeposit(amountBaseUnits uint64) vsr.DepositSlot {
	return vsr.DepositSlot{
		IsUsed:          true,
		AmountBaseUnits: amountBaseUnits,
		Lockup:          vsr.Lockup{Kind: vsr.LockupNone},
	}
}

func TestAggregateNativeNoLockup(t *testing.T) {
	wallet := testKey(1)
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(310_472_969_300),
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{record},
		wallet,
		noAliases(),
		DefaultParams(),
		testNow,
	)
	assert.InDelta(t, 310_472.9693, result.NativePower, 0.0001)
	assert.Equal(t, 0.0, result.DelegatedPower)
	assert.InDelta(t, result.NativePower, result.TotalPower, 1e-9)
	require.Len(t, result.Contributions, 1)
	assert.Equal(t, 1.0, result.Contributions[0].Multiplier)
}

func TestAggregateTwoYearLockup(t *testing.T) {
	wallet := testKey(1)
	params := DefaultParams()
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			{
				IsUsed:          true,
				AmountBaseUnits: 100_000_000_000,
				Lockup: vsr.Lockup{
					Kind:    vsr.LockupCliff,
					StartTs: testNow - 1,
					EndTs:   testNow + 2*params.SecondsPerYear,
				},
			},
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{record},
		wallet,
		noAliases(),
		params,
		testNow,
	)
	assert.InDelta(t, 300_000.0, result.NativePower, 0.01)
}

func TestAggregateCappedLockup(t *testing.T) {
	wallet := testKey(1)
	params := DefaultParams()
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			{
				IsUsed:          true,
				AmountBaseUnits: 100_000_000_000,
				Lockup: vsr.Lockup{
					Kind:    vsr.LockupConstant,
					StartTs: testNow,
					EndTs:   testNow + 10*params.SecondsPerYear,
				},
			},
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{record},
		wallet,
		noAliases(),
		params,
		testNow,
	)
	assert.InDelta(t, 500_000.0, result.NativePower, 0.01)
}

func TestAggregateDelegated(t *testing.T) {
	owner := testKey(1)
	delegate := testKey(2)
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         owner,
		DelegateAuthority: delegate,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(50_000_000),
		},
	}
	records := []*vsr.VoterRecord{record}

	// For the delegate wallet: power is delegated only
	result := Aggregate(records, delegate, noAliases(), DefaultParams(), testNow)
	assert.Equal(t, 0.0, result.NativePower)
	assert.InDelta(t, 50.0, result.DelegatedPower, 1e-9)

	// For the owner wallet: the same record is native only
	result = Aggregate(records, owner, noAliases(), DefaultParams(), testNow)
	assert.InDelta(t, 50.0, result.NativePower, 1e-9)
	assert.Equal(t, 0.0, result.DelegatedPower)
}

func TestAggregateSelfDelegationIsNative(t *testing.T) {
	wallet := testKey(1)
	aliasKey := testKey(2)
	aliases := alias.NewAliasSet(map[solana.PublicKey][]solana.PublicKey{
		wallet: {aliasKey},
	})
	// authority and delegate are the same alias of the wallet; the record
	// must be native and never delegated-to-itself
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         aliasKey,
		DelegateAuthority: aliasKey,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(10_000_000),
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{record},
		wallet,
		aliases,
		DefaultParams(),
		testNow,
	)
	assert.InDelta(t, 10.0, result.NativePower, 1e-9)
	assert.Equal(t, 0.0, result.DelegatedPower)
}

func TestAggregateUnrelatedRecordSkipped(t *testing.T) {
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         testKey(1),
		DelegateAuthority: testKey(2),
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(10_000_000),
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{record},
		testKey(3),
		noAliases(),
		DefaultParams(),
		testNow,
	)
	// exactly zero, not a small residual
	assert.Equal(t, 0.0, result.NativePower)
	assert.Equal(t, 0.0, result.DelegatedPower)
	assert.Equal(t, 0.0, result.TotalPower)
	assert.Empty(t, result.Contributions)
}

func TestAggregateDedupWithinRecord(t *testing.T) {
	wallet := testKey(1)
	// The same economic deposit physically encoded twice in one record
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(25_000_000),
			unlockedDeposit(25_000_000),
		},
	}
	single := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(25_000_000),
		},
	}

	dup := Aggregate(
		[]*vsr.VoterRecord{record},
		wallet,
		noAliases(),
		DefaultParams(),
		testNow,
	)
	one := Aggregate(
		[]*vsr.VoterRecord{single},
		wallet,
		noAliases(),
		DefaultParams(),
		testNow,
	)
	assert.Equal(t, one.NativePower, dup.NativePower)
	assert.Len(t, dup.Contributions, 1)
}

func TestAggregateNoDedupAcrossRecords(t *testing.T) {
	wallet := testKey(1)
	// Distinct accounts legitimately hold equal amounts
	recordA := &vsr.VoterRecord{
		Address:           testKey(8),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(25_000_000),
		},
	}
	recordB := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(25_000_000),
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{recordA, recordB},
		wallet,
		noAliases(),
		DefaultParams(),
		testNow,
	)
	assert.InDelta(t, 50.0, result.NativePower, 1e-9)
	assert.Len(t, result.Contributions, 2)
}

func TestAggregateDifferentMultipliersNotDeduped(t *testing.T) {
	wallet := testKey(1)
	params := DefaultParams()
	// Equal amounts but different lockups are distinct deposits
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			unlockedDeposit(25_000_000),
			{
				IsUsed:          true,
				AmountBaseUnits: 25_000_000,
				Lockup: vsr.Lockup{
					Kind:    vsr.LockupCliff,
					StartTs: testNow,
					EndTs:   testNow + 2*params.SecondsPerYear,
				},
			},
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{record},
		wallet,
		noAliases(),
		params,
		testNow,
	)
	assert.Len(t, result.Contributions, 2)
	assert.InDelta(t, 25.0+75.0, result.NativePower, 0.001)
}

func TestAggregateClassificationExclusive(t *testing.T) {
	wallet := testKey(1)
	other := testKey(2)
	records := []*vsr.VoterRecord{
		{
			Address:           testKey(8),
			Authority:         wallet,
			DelegateAuthority: other,
			Deposits:          []vsr.DepositSlot{unlockedDeposit(10_000_000)},
		},
		{
			Address:           testKey(9),
			Authority:         other,
			DelegateAuthority: wallet,
			Deposits:          []vsr.DepositSlot{unlockedDeposit(20_000_000)},
		},
	}

	result := Aggregate(records, wallet, noAliases(), DefaultParams(), testNow)
	// each record lands in exactly one bucket
	assert.InDelta(t, 10.0, result.NativePower, 1e-9)
	assert.InDelta(t, 20.0, result.DelegatedPower, 1e-9)
	assert.InDelta(t, 30.0, result.TotalPower, 1e-9)
}

func TestAggregateInvalidLockupFlagged(t *testing.T) {
	wallet := testKey(1)
	record := &vsr.VoterRecord{
		Address:           testKey(9),
		Authority:         wallet,
		DelegateAuthority: wallet,
		Deposits: []vsr.DepositSlot{
			{
				IsUsed:          true,
				AmountBaseUnits: 10_000_000,
				Lockup: vsr.Lockup{
					Kind:    vsr.LockupCliff,
					StartTs: testNow + 2000,
					EndTs:   testNow + 500,
				},
			},
		},
	}

	result := Aggregate(
		[]*vsr.VoterRecord{record},
		wallet,
		noAliases(),
		DefaultParams(),
		testNow,
	)
	// counted with multiplier 1.0 and flagged for audit
	assert.InDelta(t, 10.0, result.NativePower, 1e-9)
	assert.Equal(t, 1, result.InvalidLockups)
}
