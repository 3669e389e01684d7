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

package validate

import (
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

const maxFixtureFileSize = 1 * 1024 * 1024

type fixtureFile struct {
	Tolerance float64 `yaml:"tolerance,omitempty"`
	Fixtures  []struct {
		Wallet         string  `yaml:"wallet"`
		ExpectedNative float64 `yaml:"expectedNative"`
	} `yaml:"fixtures"`
}

// LoadFixturesFromFile reads a YAML fixture file. The file may override
// the relative tolerance; otherwise DefaultTolerance is returned.
func LoadFixturesFromFile(path string) ([]Fixture, float64, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer dataFile.Close()
	return LoadFixturesFromReader(dataFile)
}

// LoadFixturesFromReader reads YAML fixtures from r
func LoadFixturesFromReader(r io.Reader) ([]Fixture, float64, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFixtureFileSize+1))
	if err != nil {
		return nil, 0, err
	}
	if len(data) > maxFixtureFileSize {
		return nil, 0, fmt.Errorf(
			"fixture file exceeds maximum size of %d bytes",
			maxFixtureFileSize,
		)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, 0, fmt.Errorf("error parsing fixture file: %w", err)
	}
	tolerance := f.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	fixtures := make([]Fixture, 0, len(f.Fixtures))
	for _, row := range f.Fixtures {
		wallet, err := solana.PublicKeyFromBase58(row.Wallet)
		if err != nil {
			return nil, 0, fmt.Errorf(
				"invalid fixture wallet %q: %w",
				row.Wallet,
				err,
			)
		}
		fixtures = append(fixtures, Fixture{
			Wallet:         wallet,
			ExpectedNative: row.ExpectedNative,
		})
	}
	return fixtures, tolerance, nil
}
