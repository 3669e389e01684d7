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

// Package alias resolves the set of ledger addresses treated as equivalent
// authorities of a wallet. The alias table is a static configuration
// artifact loaded once; the resulting AliasSet is immutable and passed by
// reference into the aggregation pipeline.
package alias

import (
	"github.com/gagliardetto/solana-go"
)

// AliasSet holds the symmetric transitive closure of the is-alias-of
// relation. Lookups are O(1) after construction.
type AliasSet struct {
	groups map[solana.PublicKey]map[solana.PublicKey]struct{}
}

// NewAliasSet builds an AliasSet from a raw wallet -> aliases table. The
// relation is treated as undirected and closed transitively: if B is an
// alias of A, then A is an authority-equivalent of B, and all of A's other
// aliases apply to B's lookups. Cycles in the table terminate via the
// visited set of the closure walk.
func NewAliasSet(table map[solana.PublicKey][]solana.PublicKey) *AliasSet {
	// Undirected adjacency
	adj := make(map[solana.PublicKey]map[solana.PublicKey]struct{})
	link := func(a, b solana.PublicKey) {
		if adj[a] == nil {
			adj[a] = make(map[solana.PublicKey]struct{})
		}
		adj[a][b] = struct{}{}
	}
	for wallet, aliases := range table {
		for _, a := range aliases {
			link(wallet, a)
			link(a, wallet)
		}
	}
	// Each connected component is one equivalence group, shared by every
	// member so lookups stay O(1)
	groups := make(map[solana.PublicKey]map[solana.PublicKey]struct{})
	for start := range adj {
		if _, done := groups[start]; done {
			continue
		}
		component := make(map[solana.PublicKey]struct{})
		stack := []solana.PublicKey{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := component[cur]; seen {
				continue
			}
			component[cur] = struct{}{}
			for next := range adj[cur] {
				stack = append(stack, next)
			}
		}
		for member := range component {
			groups[member] = component
		}
	}
	return &AliasSet{groups: groups}
}

// Resolve returns every address considered an authority-equivalent of
// wallet, always including wallet itself.
func (s *AliasSet) Resolve(wallet solana.PublicKey) map[solana.PublicKey]struct{} {
	if group, ok := s.groups[wallet]; ok {
		return group
	}
	return map[solana.PublicKey]struct{}{wallet: {}}
}

// Contains reports whether addr is an authority-equivalent of wallet
func (s *AliasSet) Contains(wallet, addr solana.PublicKey) bool {
	if wallet.Equals(addr) {
		return true
	}
	group, ok := s.groups[wallet]
	if !ok {
		return false
	}
	_, ok = group[addr]
	return ok
}

// Canonical returns a stable representative for wallet's equivalence
// group: the lexicographically smallest member. Wallets with no aliases
// are their own representative.
func (s *AliasSet) Canonical(wallet solana.PublicKey) solana.PublicKey {
	group, ok := s.groups[wallet]
	if !ok {
		return wallet
	}
	canon := wallet
	for member := range group {
		if member.String() < canon.String() {
			canon = member
		}
	}
	return canon
}
