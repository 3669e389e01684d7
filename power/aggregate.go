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
	"fmt"
	"math"

	"github.com/Gintonik/islanddao-governance-platform-sub004/alias"
	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	"github.com/gagliardetto/solana-go"
)

// classification of one record relative to a target wallet
type classification int

const (
	classUnrelated classification = iota
	classNative
	classDelegated
)

// DepositContribution is one deduplicated deposit's contribution to a
// wallet's power, retained for audit.
type DepositContribution struct {
	SourceRecord solana.PublicKey
	Amount       float64
	Multiplier   float64
	Power        float64
	Delegated    bool
}

// GovernancePowerResult is the canonical per-wallet output of one
// aggregation pass.
type GovernancePowerResult struct {
	Wallet         solana.PublicKey
	NativePower    float64
	DelegatedPower float64
	TotalPower     float64
	Contributions  []DepositContribution

	// InvalidLockups counts deposits whose lockup schedule contradicted
	// itself and was treated as expired, flagged for audit
	InvalidLockups int
}

// classify determines how a record relates to the target wallet's alias
// set. A record is native when its authority is in the set. It is
// delegated only when the delegate is in the set, the authority is not,
// and authority and delegate differ; the strict three-part rule prevents
// a wallet double-counting its own records as delegated to itself.
func classify(
	record *vsr.VoterRecord,
	wallet solana.PublicKey,
	aliases *alias.AliasSet,
) classification {
	if aliases.Contains(wallet, record.Authority) {
		return classNative
	}
	if aliases.Contains(wallet, record.DelegateAuthority) &&
		!record.Authority.Equals(record.DelegateAuthority) {
		return classDelegated
	}
	return classUnrelated
}

// dedupKey identifies one economic deposit within a single record. The
// underlying format's history can physically encode the same deposit more
// than once; two slots in the same record with equal rounded amount and
// equal effective multiplier are one contribution. The key is never
// shared across records, since distinct accounts legitimately hold equal
// amounts.
type dedupKey struct {
	amountMicro     int64
	multiplierNanos int64
}

func newDedupKey(amount, multiplier float64) dedupKey {
	return dedupKey{
		amountMicro:     int64(math.Round(amount * 1e6)),
		multiplierNanos: int64(math.Round(multiplier * 1e9)),
	}
}

// Aggregate walks all decoded records and produces the canonical
// (native, delegated, total) power result for targetWallet at time now.
// Negative computed power indicates a programming error and panics.
func Aggregate(
	records []*vsr.VoterRecord,
	targetWallet solana.PublicKey,
	aliases *alias.AliasSet,
	params Params,
	now int64,
) GovernancePowerResult {
	result := GovernancePowerResult{
		Wallet: targetWallet,
	}
	for _, record := range records {
		class := classify(record, targetWallet, aliases)
		if class == classUnrelated {
			continue
		}
		seen := make(map[dedupKey]struct{})
		for _, slot := range record.Deposits {
			if !slot.Contributing() {
				continue
			}
			if slot.Lockup.Invalid() {
				result.InvalidLockups++
			}
			amount := slot.DisplayAmount()
			multiplier := params.Multiplier(slot.Lockup, now)
			key := newDedupKey(amount, multiplier)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			contribution := DepositContribution{
				SourceRecord: record.Address,
				Amount:       amount,
				Multiplier:   multiplier,
				Power:        amount * multiplier,
				Delegated:    class == classDelegated,
			}
			if class == classNative {
				result.NativePower += contribution.Power
			} else {
				result.DelegatedPower += contribution.Power
			}
			result.Contributions = append(result.Contributions, contribution)
		}
	}
	result.TotalPower = result.NativePower + result.DelegatedPower
	if result.NativePower < 0 || result.DelegatedPower < 0 {
		panic(fmt.Sprintf(
			"negative computed power for wallet %s: native=%f delegated=%f",
			targetWallet,
			result.NativePower,
			result.DelegatedPower,
		))
	}
	return result
}
