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

package alias

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// ErrAliasCycle is returned when the alias table maps a wallet to itself.
// The undirected closure tolerates longer cycles, but a self-alias always
// indicates a broken table and is fatal at load time.
var ErrAliasCycle = errors.New("alias cycle detected")

// maxAliasFileSize is the maximum allowed size for an alias table file
// (1 MB). This prevents unbounded memory allocation from untrusted readers.
const maxAliasFileSize = 1 * 1024 * 1024

// NewAliasSetFromFile loads a YAML alias table (wallet address mapped to a
// list of alias addresses) and builds the closed AliasSet from it.
func NewAliasSetFromFile(path string) (*AliasSet, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewAliasSetFromReader(dataFile)
}

// NewAliasSetFromReader builds an AliasSet from YAML read from r
func NewAliasSetFromReader(r io.Reader) (*AliasSet, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxAliasFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxAliasFileSize {
		return nil, fmt.Errorf(
			"alias table exceeds maximum size of %d bytes",
			maxAliasFileSize,
		)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing alias table: %w", err)
	}
	table := make(map[solana.PublicKey][]solana.PublicKey, len(raw))
	for wallet, aliases := range raw {
		walletKey, err := solana.PublicKeyFromBase58(wallet)
		if err != nil {
			return nil, fmt.Errorf("invalid wallet address %q: %w", wallet, err)
		}
		for _, a := range aliases {
			aliasKey, err := solana.PublicKeyFromBase58(a)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid alias address %q for wallet %s: %w",
					a,
					wallet,
					err,
				)
			}
			if aliasKey.Equals(walletKey) {
				return nil, fmt.Errorf(
					"%w: wallet %s lists itself as an alias",
					ErrAliasCycle,
					wallet,
				)
			}
			table[walletKey] = append(table[walletKey], aliasKey)
		}
	}
	return NewAliasSet(table), nil
}
