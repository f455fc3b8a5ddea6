// Copyright 2024 The pik-laskutin authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package amount provides monetary helpers on top of shopspring decimals.
// Amounts are exact decimals throughout; narrowing to two fractional digits
// happens only when rendering.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	sixty = decimal.NewFromInt(60)

	// zeroThreshold is the magnitude below which an invoice total counts as zero.
	zeroThreshold = decimal.New(1, -2)
)

// New creates an amount from whole currency units.
func New(units int64) decimal.Decimal {
	return decimal.NewFromInt(units)
}

// Parse parses a decimal amount. Both "." and "," are accepted as the
// decimal separator, since the bookkeeping exports use the Finnish locale.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// Format renders an amount with two fractional digits, rounding half up.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// PerMinute converts an hourly rate and a duration in minutes to a price.
// The division keeps full decimal precision; rounding is left to Format.
func PerMinute(hourlyRate, minutes decimal.Decimal) decimal.Decimal {
	return minutes.Mul(hourlyRate).Div(sixty)
}

// IsZeroTotal reports whether a total is indistinguishable from zero at
// display precision.
func IsZeroTotal(d decimal.Decimal) bool {
	return d.Abs().LessThan(zeroThreshold)
}
