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

package vsr

import (
	"github.com/gagliardetto/solana-go"
)

// AmountScale is the fixed decimal scale used to convert deposit amounts
// from base units to display units
const AmountScale = 1_000_000

// LockupKind identifies the vesting schedule attached to a deposit
type LockupKind uint8

const (
	LockupNone LockupKind = iota
	LockupCliff
	LockupConstant
	LockupDailyVesting
	LockupMonthlyVesting
)

func (k LockupKind) Valid() bool {
	return k <= LockupMonthlyVesting
}

func (k LockupKind) String() string {
	switch k {
	case LockupNone:
		return "none"
	case LockupCliff:
		return "cliff"
	case LockupConstant:
		return "constant"
	case LockupDailyVesting:
		return "daily"
	case LockupMonthlyVesting:
		return "monthly"
	default:
		return "unknown"
	}
}

// Lockup is a time-based restriction on a deposit. StartTs and EndTs are
// unix timestamps in seconds. A Lockup with Kind == LockupNone carries no
// meaning in its timestamps.
type Lockup struct {
	StartTs int64
	EndTs   int64
	Kind    LockupKind
}

// Invalid reports whether the lockup schedule contradicts itself
// (end before start while a schedule is active). Invalid lockups are
// flagged for audit and treated as if expired.
func (l Lockup) Invalid() bool {
	return l.Kind != LockupNone && l.EndTs < l.StartTs
}

// DepositSlot is one decoded deposit entry from a voter record. Slots that
// are unused or empty are retained for audit but contribute no power.
type DepositSlot struct {
	AmountBaseUnits uint64
	Lockup          Lockup
	SlotIndex       uint8
	IsUsed          bool
}

// Contributing reports whether this slot counts toward voting power
func (d DepositSlot) Contributing() bool {
	return d.IsUsed && d.AmountBaseUnits > 0
}

// DisplayAmount converts the slot amount from base units to display units
func (d DepositSlot) DisplayAmount() float64 {
	return float64(d.AmountBaseUnits) / AmountScale
}

// VoterRecord is one decoded on-chain voter account. Authority is the
// wallet that owns the record; DelegateAuthority is the wallet currently
// empowered to vote it. Both are always set, and are equal when the record
// carries no delegation.
type VoterRecord struct {
	Address           solana.PublicKey
	Authority         solana.PublicKey
	DelegateAuthority solana.PublicKey
	Deposits          []DepositSlot
}

// ContributingDeposits returns only the used, non-empty slots
func (r *VoterRecord) ContributingDeposits() []DepositSlot {
	var out []DepositSlot
	for _, d := range r.Deposits {
		if d.Contributing() {
			out = append(out, d)
		}
	}
	return out
}

// RawAccount is one raw on-chain account as fetched from the ledger. The
// caller owns Data for the duration of a decode call.
type RawAccount struct {
	Address solana.PublicKey
	Data    []byte
}
