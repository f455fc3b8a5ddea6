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

// Package engine drives one ordered pass over the event stream. The pass
// is strictly single-threaded: the same inputs produce the same lines and
// the same final context.
package engine

import (
	"log"
	"sort"
	"strings"

	"github.com/jtuo/pik-laskutin/lib/billing"
)

// Engine evaluates every top-level rule against every event, in order.
type Engine struct {
	Rules   []billing.Rule
	Context *billing.Context
	// SkipPrefixes are uppercase account id prefixes whose events are
	// skipped before rule evaluation.
	SkipPrefixes []string
}

// Diagnostics collects the non-fatal findings of a pass.
type Diagnostics struct {
	// SkippedAccounts are accounts excluded by a no-invoicing prefix.
	SkippedAccounts map[string]bool
	// Unmatched are events for which no rule produced a line.
	Unmatched []billing.Event
}

// SortedSkippedAccounts lists the skipped accounts in ascending order.
func (d *Diagnostics) SortedSkippedAccounts() []string {
	accounts := make([]string, 0, len(d.SkippedAccounts))
	for a := range d.SkippedAccounts {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	return accounts
}

// Run processes the events in order and collects all emitted lines.
func (e *Engine) Run(events []billing.Event) ([]*billing.Line, *Diagnostics) {
	diag := &Diagnostics{SkippedAccounts: make(map[string]bool)}
	var lines []*billing.Line
	for _, ev := range events {
		if e.skip(ev) {
			diag.SkippedAccounts[ev.Account()] = true
			continue
		}
		matched := false
		for _, r := range e.Rules {
			produced := r.Invoice(ev, e.Context)
			if len(produced) > 0 {
				matched = true
			}
			lines = append(lines, produced...)
		}
		if !matched {
			diag.Unmatched = append(diag.Unmatched, ev)
			log.Printf("no match for event %v", ev)
		}
	}
	return lines, diag
}

func (e *Engine) skip(ev billing.Event) bool {
	account := strings.ToUpper(ev.Account())
	for _, prefix := range e.SkipPrefixes {
		if strings.HasPrefix(account, prefix) {
			return true
		}
	}
	return false
}
