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

// Package validate certifies the decode and aggregation pipeline against
// wallets with known expected governance power. A pipeline change may
// only replace the previous canonical implementation when every fixture
// passes within tolerance. The harness never mutates persisted results.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/Gintonik/islanddao-governance-platform-sub004/alias"
	"github.com/Gintonik/islanddao-governance-platform-sub004/power"
	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	"github.com/gagliardetto/solana-go"
)

// DefaultTolerance is the relative tolerance applied to non-zero
// expectations (0.5%)
const DefaultTolerance = 0.005

// Fixture is one wallet with a known expected native governance power
type Fixture struct {
	Wallet         solana.PublicKey
	ExpectedNative float64
}

// Row is the outcome of checking one fixture
type Row struct {
	Wallet       solana.PublicKey
	Expected     float64
	Actual       float64
	PercentError float64
	Pass         bool
}

// Report is the full harness outcome, one row per fixture
type Report struct {
	Rows      []Row
	Tolerance float64
}

// Pass reports whether every fixture passed
func (r *Report) Pass() bool {
	for _, row := range r.Rows {
		if !row.Pass {
			return false
		}
	}
	return true
}

// Failures returns only the failing rows
func (r *Report) Failures() []Row {
	var out []Row
	for _, row := range r.Rows {
		if !row.Pass {
			out = append(out, row)
		}
	}
	return out
}

// String renders the report as a fixed-width table suitable for CLI or
// CI output.
func (r *Report) String() string {
	var buf strings.Builder
	fmt.Fprintf(
		&buf,
		"%-44s  %16s  %16s  %9s  %s\n",
		"WALLET", "EXPECTED", "ACTUAL", "ERROR", "RESULT",
	)
	for _, row := range r.Rows {
		status := "PASS"
		if !row.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(
			&buf,
			"%-44s  %16.4f  %16.4f  %8.4f%%  %s\n",
			row.Wallet,
			row.Expected,
			row.Actual,
			row.PercentError*100,
			status,
		)
	}
	return buf.String()
}

// Run executes the full pipeline for each fixture wallet and checks the
// computed native power against the expectation. A fixture expecting
// exactly zero requires the computed power to be exactly zero: the zero
// case signals intentional exclusion, not approximate exclusion, so no
// tolerance applies.
func Run(
	records []*vsr.VoterRecord,
	fixtures []Fixture,
	aliases *alias.AliasSet,
	params power.Params,
	now int64,
	tolerance float64,
) *Report {
	report := &Report{
		Tolerance: tolerance,
	}
	for _, fixture := range fixtures {
		result := power.Aggregate(records, fixture.Wallet, aliases, params, now)
		row := Row{
			Wallet:   fixture.Wallet,
			Expected: fixture.ExpectedNative,
			Actual:   result.NativePower,
		}
		if fixture.ExpectedNative == 0 {
			row.Pass = result.NativePower == 0
			if !row.Pass {
				row.PercentError = math.Inf(1)
			}
		} else {
			row.PercentError = math.Abs(
				result.NativePower-fixture.ExpectedNative,
			) / fixture.ExpectedNative
			row.Pass = row.PercentError <= tolerance
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}
