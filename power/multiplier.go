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

// Package power computes per-deposit voting power multipliers and
// aggregates per-wallet native and delegated voting power from decoded
// voter records.
package power

import (
	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
)

// Params are the protocol governance parameters for the lockup bonus
// formula. They are protocol configuration, not universal constants, and
// should be confirmed against the authoritative governance parameter
// record before being trusted.
type Params struct {
	// SecondsPerYear converts a remaining lockup duration to years.
	// The default uses the 365.2425-day Gregorian year.
	SecondsPerYear int64

	// MaxBonusYears caps how many remaining lockup years earn bonus weight
	MaxBonusYears float64

	// MaxMultiplierCap is the absolute ceiling on the multiplier
	MaxMultiplierCap float64
}

// DefaultParams returns the documented protocol defaults
func DefaultParams() Params {
	return Params{
		SecondsPerYear:   31_556_952,
		MaxBonusYears:    4,
		MaxMultiplierCap: 5.0,
	}
}

// Multiplier maps a lockup schedule and the current time to a voting
// power multiplier. It is pure and total: every valid Lockup yields a
// value in [1.0, MaxMultiplierCap]. Expired lockups, lockups of kind
// none (regardless of timestamps), and self-contradictory lockups all
// yield exactly 1.0.
func (p Params) Multiplier(lockup vsr.Lockup, now int64) float64 {
	if lockup.Kind == vsr.LockupNone {
		return 1.0
	}
	if lockup.Invalid() {
		return 1.0
	}
	if lockup.EndTs <= now {
		return 1.0
	}
	yearsRemaining := float64(lockup.EndTs-now) / float64(p.SecondsPerYear)
	if yearsRemaining < 0 {
		yearsRemaining = 0
	}
	if yearsRemaining > p.MaxBonusYears {
		yearsRemaining = p.MaxBonusYears
	}
	multiplier := 1.0 + yearsRemaining
	if multiplier > p.MaxMultiplierCap {
		multiplier = p.MaxMultiplierCap
	}
	if multiplier < 1.0 {
		multiplier = 1.0
	}
	return multiplier
}
