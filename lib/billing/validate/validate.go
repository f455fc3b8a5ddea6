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

// Package validate checks event account ids against the known id sets.
// Validation is diagnostic only: invalid events are reported and counted
// but still flow into the engine.
package validate

import (
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/shopspring/decimal"
)

// Validator accepts account ids that are either known member ids of length
// 4 or 6, or members of the external id set.
type Validator struct {
	KnownIDs    map[string]bool
	ExternalIDs map[string]bool
}

// Valid reports whether the event's account id is acceptable.
func (v *Validator) Valid(ev billing.Event) bool {
	id := ev.Account()
	if v.KnownIDs[id] && (len(id) == 4 || len(id) == 6) {
		return true
	}
	return v.ExternalIDs[id]
}

// Summary counts invalid events by variant name; for simple events the
// invalid amounts are also totalled.
type Summary struct {
	Counts map[string]int
	Totals map[string]decimal.Decimal
}

// Total is the overall number of invalid events.
func (s *Summary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Events validates the stream and returns the summary. Each invalid event
// is logged individually.
func (v *Validator) Events(events []billing.Event) *Summary {
	s := &Summary{
		Counts: make(map[string]int),
		Totals: make(map[string]decimal.Decimal),
	}
	for _, ev := range events {
		if v.Valid(ev) {
			continue
		}
		switch t := ev.(type) {
		case *billing.SimpleEvent:
			log.Printf("invalid account id %s %v", t.AccountID, t)
			s.Counts["SimpleEvent"]++
			s.Totals["SimpleEvent"] = s.Totals["SimpleEvent"].Add(t.Amount)
		case *billing.Flight:
			log.Printf("invalid account id %s %v", t.AccountID, t)
			s.Counts["Flight"]++
		default:
			s.Counts[fmt.Sprintf("%T", ev)]++
		}
	}
	return s
}

// Render writes a human-readable validation summary.
func (s *Summary) Render(w io.Writer) {
	if s.Total() == 0 {
		fmt.Fprintln(w, "All events were accounted for.")
		return
	}
	fmt.Fprintln(w, "Summary of invalid events:")
	types := make([]string, 0, len(s.Counts))
	for t := range s.Counts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if total, ok := s.Totals[t]; ok {
			fmt.Fprintf(w, "%ss: %d events, total amount: %s\n", t, s.Counts[t], total.StringFixed(2))
		} else {
			fmt.Fprintf(w, "%ss: %d events\n", t, s.Counts[t])
		}
	}
	fmt.Fprintf(w, "Total invalid events: %d\n", s.Total())
}
