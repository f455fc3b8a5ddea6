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

// Package filter provides the pure predicates rules use to gate events.
// Filters are side-effect free; each has a stable string form used in
// diagnostics. A predicate that cannot be evaluated (missing context entry,
// malformed stored value) reports no match rather than failing.
package filter

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/date"
)

// Filter is a predicate over events.
type Filter interface {
	Match(ev billing.Event) bool
	String() string
}

// Period matches events whose date falls within the period.
type Period struct {
	Period date.Period
}

func (f Period) Match(ev billing.Event) bool {
	return f.Period.Contains(ev.Time())
}

func (f Period) String() string {
	return fmt.Sprintf("PeriodFilter(%s)", f.Period)
}

// Aircraft matches flights with one of the given aircraft.
type Aircraft struct {
	Aircraft []string
}

func (f Aircraft) Match(ev billing.Event) bool {
	fl, ok := ev.(*billing.Flight)
	if !ok {
		return false
	}
	for _, a := range f.Aircraft {
		if fl.Aircraft == a {
			return true
		}
	}
	return false
}

func (f Aircraft) String() string {
	return fmt.Sprintf("AircraftFilter(%s)", strings.Join(f.Aircraft, ","))
}

// Purpose matches flights with one of the given purposes of flight.
type Purpose struct {
	Purposes []string
}

func (f Purpose) Match(ev billing.Event) bool {
	fl, ok := ev.(*billing.Flight)
	if !ok {
		return false
	}
	for _, p := range f.Purposes {
		if fl.Purpose == p {
			return true
		}
	}
	return false
}

func (f Purpose) String() string {
	return fmt.Sprintf("PurposeFilter(%s)", strings.Join(f.Purposes, ","))
}

// TransferTow matches transfer tow flights.
type TransferTow struct{}

func (TransferTow) Match(ev billing.Event) bool {
	fl, ok := ev.(*billing.Flight)
	return ok && fl.TransferTow
}

func (TransferTow) String() string { return "TransferTowFilter()" }

// InvoicingCharge matches flights carrying an invoicing comment, which
// indicates an invoicing surcharge should be added.
type InvoicingCharge struct{}

func (InvoicingCharge) Match(ev billing.Event) bool {
	fl, ok := ev.(*billing.Flight)
	return ok && fl.InvoicingComment != ""
}

func (InvoicingCharge) String() string { return "InvoicingChargeFilter()" }

// Item matches simple events whose item matches the regexp.
type Item struct {
	Regex *regexp.Regexp
}

// ItemPattern compiles the pattern; it panics on an invalid pattern, which
// is a rule configuration bug.
func ItemPattern(pattern string) Item {
	return Item{Regex: regexp.MustCompile(pattern)}
}

func (f Item) Match(ev billing.Event) bool {
	se, ok := ev.(*billing.SimpleEvent)
	return ok && f.Regex.MatchString(se.Item)
}

func (f Item) String() string {
	return fmt.Sprintf("ItemFilter(%s)", f.Regex)
}

// PositiveAmount matches simple events with amount 0 or greater.
type PositiveAmount struct{}

func (PositiveAmount) Match(ev billing.Event) bool {
	se, ok := ev.(*billing.SimpleEvent)
	return ok && !se.Amount.IsNegative()
}

func (PositiveAmount) String() string { return "PositivePriceFilter()" }

// NegativeAmount matches simple events with amount less than 0.
type NegativeAmount struct{}

func (NegativeAmount) Match(ev billing.Event) bool {
	se, ok := ev.(*billing.SimpleEvent)
	return ok && se.Amount.IsNegative()
}

func (NegativeAmount) String() string { return "NegativePriceFilter()" }

// IsFlight matches events of type Flight.
type IsFlight struct{}

func (IsFlight) Match(ev billing.Event) bool {
	_, ok := ev.(*billing.Flight)
	return ok
}

func (IsFlight) String() string { return "FlightFilter()" }

// IsSimpleEvent matches events of type SimpleEvent.
type IsSimpleEvent struct{}

func (IsSimpleEvent) Match(ev billing.Event) bool {
	_, ok := ev.(*billing.SimpleEvent)
	return ok
}

func (IsSimpleEvent) String() string { return "SimpleEventFilter()" }

// daysPerYear amortizes leap days when converting day counts to years.
const daysPerYear = 365.25

// BirthDate matches events where the account holder's age at event time is
// at most MaxAge years. Accounts with a missing or malformed birth date
// never match.
type BirthDate struct {
	// BirthDates maps account ids to ISO 8601 dates.
	BirthDates map[string]string
	MaxAge     float64
}

func (f BirthDate) Match(ev billing.Event) bool {
	s, ok := f.BirthDates[ev.Account()]
	if !ok || s == "" {
		log.Printf("no birth date found for account %s", ev.Account())
		return false
	}
	born, err := date.Parse(s)
	if err != nil {
		log.Printf("invalid birth date %q for account %s", s, ev.Account())
		return false
	}
	age := ev.Time().Sub(born).Hours() / 24 / daysPerYear
	return age <= f.MaxAge
}

func (f BirthDate) String() string {
	return fmt.Sprintf("BirthDateFilter(max_age=%g)", f.MaxAge)
}

// MemberList matches events by account id membership. In whitelist mode
// members of the list match; in blacklist mode everyone else does.
type MemberList struct {
	Members   map[string]bool
	Whitelist bool
}

func (f MemberList) Match(ev billing.Event) bool {
	return f.Members[ev.Account()] == f.Whitelist
}

func (f MemberList) String() string {
	mode := "blacklist"
	if f.Whitelist {
		mode = "whitelist"
	}
	return fmt.Sprintf("MemberList(%s,%d members)", mode, len(f.Members))
}

// SinceDate matches events on or after the date stored in the given
// context variable for the event's account. An unset or non-date variable
// never matches.
type SinceDate struct {
	Ctx      *billing.Context
	Variable string
}

func (f SinceDate) Match(ev billing.Event) bool {
	limit, ok := f.Ctx.Date(ev.Account(), f.Variable)
	if !ok {
		return false
	}
	return !ev.Time().Before(limit)
}

func (f SinceDate) String() string {
	return fmt.Sprintf("SinceDateFilter(%s)", f.Variable)
}

// Not matches events the wrapped filter does not match.
func Not(f Filter) Filter { return negation{f} }

type negation struct {
	inner Filter
}

func (f negation) Match(ev billing.Event) bool { return !f.inner.Match(ev) }
func (f negation) String() string              { return fmt.Sprintf("NOT(%s)", f.inner) }

// Or matches if any of the given filters matches.
func Or(filters ...Filter) Filter { return anyOf(filters) }

// OrGroups flattens the given filter groups and matches if any member of
// any group matches. All elements of every group are taken.
func OrGroups(groups ...[]Filter) Filter {
	var flat []Filter
	for _, g := range groups {
		flat = append(flat, g...)
	}
	return anyOf(flat)
}

type anyOf []Filter

func (fs anyOf) Match(ev billing.Event) bool {
	for _, f := range fs {
		if f.Match(ev) {
			return true
		}
	}
	return false
}

func (fs anyOf) String() string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return fmt.Sprintf("OR(%s)", strings.Join(parts, ","))
}

// MatchAll reports whether every filter matches. An empty list is always
// satisfied.
func MatchAll(filters []Filter, ev billing.Event) bool {
	for _, f := range filters {
		if !f.Match(ev) {
			return false
		}
	}
	return true
}
