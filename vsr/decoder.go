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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrMalformedAccount is returned when an account buffer cannot be decoded
// as any known record variant. The offending account is skipped by callers,
// never fatal to a batch.
var ErrMalformedAccount = errors.New("malformed account")

const identityLen = 32

// Decode turns one raw account into a VoterRecord. The record variant is
// selected by exact buffer length. All structural failures return an error
// wrapping ErrMalformedAccount with the offending address; Decode never
// panics on untrusted input.
func Decode(acct RawAccount) (*VoterRecord, error) {
	l, ok := layoutForSize(len(acct.Data))
	if !ok {
		return nil, fmt.Errorf(
			"%w: account %s: unrecognized record size %d",
			ErrMalformedAccount,
			acct.Address,
			len(acct.Data),
		)
	}
	authority, err := readIdentity(acct.Data, l.authorityOffset)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: account %s: authority: %w",
			ErrMalformedAccount,
			acct.Address,
			err,
		)
	}
	delegate, err := readIdentity(acct.Data, l.delegateOffset)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: account %s: delegate authority: %w",
			ErrMalformedAccount,
			acct.Address,
			err,
		)
	}
	record := &VoterRecord{
		Address:           acct.Address,
		Authority:         authority,
		DelegateAuthority: delegate,
	}
	if l.maxDeposits == 0 {
		return record, nil
	}
	record.Deposits = make([]DepositSlot, 0, l.maxDeposits)
	for i := range l.maxDeposits {
		base := l.depositBase + i*l.depositStride
		slot, err := decodeSlot(acct.Data, base, uint8(i))
		if err != nil {
			return nil, fmt.Errorf(
				"%w: account %s: deposit slot %d: %w",
				ErrMalformedAccount,
				acct.Address,
				i,
				err,
			)
		}
		record.Deposits = append(record.Deposits, slot)
	}
	return record, nil
}

// decodeSlot fixed-decodes one deposit slot at the given base offset.
// Unused and empty slots are decoded and retained, never dropped.
func decodeSlot(data []byte, base int, index uint8) (DepositSlot, error) {
	if base+slotEndOffset+8 > len(data) {
		return DepositSlot{}, errors.New("slot extends past buffer")
	}
	kind := LockupKind(data[base+slotKindOffset])
	if !kind.Valid() {
		return DepositSlot{}, fmt.Errorf("unknown lockup kind %d", kind)
	}
	return DepositSlot{
		SlotIndex:       index,
		IsUsed:          data[base+slotUsedOffset] != 0,
		AmountBaseUnits: binary.LittleEndian.Uint64(data[base+slotAmountOffset:]),
		Lockup: Lockup{
			Kind: kind,
			StartTs: int64(
				binary.LittleEndian.Uint64(data[base+slotStartOffset:]),
			),
			EndTs: int64(
				binary.LittleEndian.Uint64(data[base+slotEndOffset:]),
			),
		},
	}, nil
}

func readIdentity(data []byte, offset int) (solana.PublicKey, error) {
	if offset+identityLen > len(data) {
		return solana.PublicKey{}, errors.New("identity extends past buffer")
	}
	return solana.PublicKeyFromBytes(data[offset : offset+identityLen]), nil
}
