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

// Known physical record sizes. The record format is selected strictly by
// buffer length; no heuristic byte scanning.
const (
	// VoterRecordSize is the full voter account: discriminator, authority,
	// registrar, delegate authority, then the deposit slot array
	VoterRecordSize = 1384

	// DelegationRecordSize is the light delegation-only account with no
	// deposit slot array
	DelegationRecordSize = 72

	// MaxDeposits is the size of the deposit slot array in a full record
	MaxDeposits = 32
)

// Deposit slot field offsets relative to the start of a slot
const (
	slotUsedOffset   = 0
	slotKindOffset   = 1
	slotAmountOffset = 8
	slotStartOffset  = 16
	slotEndOffset    = 24
)

// layout describes the byte geometry of one record variant. A new variant
// is one more table row, not new branching logic.
type layout struct {
	name            string
	authorityOffset int
	delegateOffset  int
	depositBase     int
	depositStride   int
	maxDeposits     int
}

// layouts maps exact buffer length to the matching record geometry
var layouts = map[int]layout{
	VoterRecordSize: {
		name:            "voter",
		authorityOffset: 8,
		delegateOffset:  72,
		depositBase:     104,
		depositStride:   40,
		maxDeposits:     MaxDeposits,
	},
	DelegationRecordSize: {
		name:            "delegation",
		authorityOffset: 8,
		delegateOffset:  40,
	},
}

// layoutForSize returns the record geometry for an exact buffer length
func layoutForSize(size int) (layout, bool) {
	l, ok := layouts[size]
	return l, ok
}
