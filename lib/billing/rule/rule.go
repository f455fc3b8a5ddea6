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

// Package rule implements the composable pricing rules. A rule tree is
// immutable after construction; all mutable state lives in the billing
// context passed to Invoice.
package rule

import (
	"log"
	"strconv"
	"strings"

	"github.com/jtuo/pik-laskutin/lib/amount"
	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/billing/filter"
	"github.com/shopspring/decimal"
)

var (
	_ billing.Rule = (*Simple)(nil)
	_ billing.Rule = (*Flight)(nil)
	_ billing.Rule = (*AllOf)(nil)
	_ billing.Rule = (*FirstOf)(nil)
	_ billing.Rule = (*MinimumDuration)(nil)
	_ billing.Rule = (*SetLedgerYear)(nil)
	_ billing.Rule = (*SetDate)(nil)
	_ billing.Rule = (*Capped)(nil)
	_ billing.Rule = (*Debug)(nil)
)

// Pricer computes the amount of the line a FlightRule emits.
type Pricer interface {
	Price(f *billing.Flight) decimal.Decimal
}

// Hourly prices a flight at an hourly rate over its duration in minutes.
type Hourly struct {
	Rate decimal.Decimal
}

// HourlyRate is a convenience constructor for whole-unit hourly rates.
func HourlyRate(units int64) Hourly {
	return Hourly{Rate: amount.New(units)}
}

func (h Hourly) Price(f *billing.Flight) decimal.Decimal {
	return amount.PerMinute(h.Rate, f.Duration)
}

// PerLine prices a flight with an arbitrary function. A panic inside the
// function propagates: it indicates a configuration bug, not a non-match.
type PerLine func(f *billing.Flight) decimal.Decimal

func (p PerLine) Price(f *billing.Flight) decimal.Decimal { return p(f) }

// Fixed charges the same amount for every matched flight.
func Fixed(units int64) PerLine {
	price := amount.New(units)
	return func(*billing.Flight) decimal.Decimal { return price }
}

// Simple emits the event's own amount for every simple event that passes
// all filters. The ledger category comes from the source event, so lines
// from one Simple rule may span ledger accounts.
type Simple struct {
	Filters []filter.Filter
}

func (r *Simple) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	se, ok := ev.(*billing.SimpleEvent)
	if !ok {
		return nil
	}
	if !filter.MatchAll(r.Filters, ev) {
		return nil
	}
	return []*billing.Line{{
		AccountID:       se.AccountID,
		Date:            se.Date,
		Description:     se.Item,
		Amount:          se.Amount,
		Rule:            r,
		Event:           se,
		LedgerAccountID: se.LedgerAccountID,
		LedgerYear:      se.LedgerYear,
		Rollup:          se.Rollup,
	}}
}

// DefaultFlightTemplate is the description used when a FlightRule does not
// provide one.
const DefaultFlightTemplate = "Lento, {aircraft}, {duration} min"

// Flight emits one priced line for every flight that passes all filters.
// The description template supports the substitutions {aircraft},
// {duration} (whole minutes, truncated), {purpose} and {comment}.
type Flight struct {
	Pricer          Pricer
	LedgerAccountID int
	Filters         []filter.Filter
	Template        string
}

func (r *Flight) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	f, ok := ev.(*billing.Flight)
	if !ok {
		return nil
	}
	if !filter.MatchAll(r.Filters, ev) {
		return nil
	}
	tmpl := r.Template
	if tmpl == "" {
		tmpl = DefaultFlightTemplate
	}
	return []*billing.Line{{
		AccountID:       f.AccountID,
		Date:            f.Date,
		Description:     expand(tmpl, f),
		Amount:          r.Pricer.Price(f),
		Rule:            r,
		Event:           f,
		LedgerAccountID: r.LedgerAccountID,
	}}
}

func expand(tmpl string, f *billing.Flight) string {
	return strings.NewReplacer(
		"{aircraft}", f.Aircraft,
		"{duration}", strconv.FormatInt(f.Duration.IntPart(), 10),
		"{purpose}", f.Purpose,
		"{comment}", f.InvoicingComment,
	).Replace(tmpl)
}

// AllOf evaluates every inner rule in order and concatenates their lines.
type AllOf struct {
	Rules []billing.Rule
}

func (r *AllOf) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	var out []*billing.Line
	for _, inner := range r.Rules {
		out = append(out, inner.Invoice(ev, ctx)...)
	}
	return out
}

// FirstOf evaluates the inner rules in order and returns the lines of the
// first rule that produces any, skipping the rest. It is the discriminator
// for alternative pricing tiers.
type FirstOf struct {
	Rules []billing.Rule
}

func (r *FirstOf) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	for _, inner := range r.Rules {
		if lines := inner.Invoice(ev, ctx); len(lines) > 0 {
			return lines
		}
	}
	return nil
}

// MinimumDuration bills short flights on selected aircraft as if they had
// lasted at least Minimum minutes. The event's duration is raised only for
// the evaluation of the inner rule and restored before returning, so
// downstream rules see the original event. Transfer tows are exempt.
type MinimumDuration struct {
	Inner    billing.Rule
	Aircraft []filter.Filter
	// Minimum duration to bill, in minutes.
	Minimum decimal.Decimal
	// Suffix is appended to emitted line descriptions when the minimum
	// applies.
	Suffix string
}

func (r *MinimumDuration) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	f, ok := ev.(*billing.Flight)
	if !ok {
		return r.Inner.Invoice(ev, ctx)
	}
	applies := filter.Or(r.Aircraft...).Match(f) &&
		!f.TransferTow &&
		f.Duration.LessThan(r.Minimum)
	if !applies {
		return r.Inner.Invoice(f, ctx)
	}
	orig := f.Duration
	f.Duration = r.Minimum
	lines := r.Inner.Invoice(f, ctx)
	f.Duration = orig
	if r.Suffix != "" {
		for _, l := range lines {
			l.Description += " " + r.Suffix
		}
	}
	return lines
}

// SetLedgerYear stamps the given fiscal year on every emitted line that
// does not already carry one. Stamping is idempotent.
type SetLedgerYear struct {
	Inner billing.Rule
	Year  int
}

func (r *SetLedgerYear) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	lines := r.Inner.Invoice(ev, ctx)
	for _, l := range lines {
		if l.LedgerYear == 0 {
			l.LedgerYear = r.Year
		}
	}
	return lines
}

// SetDate records the date of each emitted line in the given context
// variable, leaving the line stream unchanged. It marks, for example, the
// purchase date of a package deal so that SinceDate filters can key off it.
type SetDate struct {
	Variable string
	Inner    billing.Rule
}

func (r *SetDate) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	lines := r.Inner.Invoice(ev, ctx)
	for _, l := range lines {
		ctx.SetDate(l.AccountID, r.Variable, l.Date)
	}
	return lines
}

// DefaultCapDescription is appended to lines rewritten by a Capped rule.
const DefaultCapDescription = "rajattu hintakattoon"

// Capped bounds the cumulative amount billed under a context variable.
// Lines from the inner rule are processed in arrival order:
//
//   - if the accumulator is already at the cap, the line is dropped or
//     zeroed depending on DropOverCap, and the accumulator stays put;
//   - if the line would push the accumulator past the cap, its amount is
//     cut to the remaining headroom;
//   - the accumulator then advances by the emitted amount.
//
// Exactly one accumulator update happens per emitted line.
type Capped struct {
	Variable string
	Cap      decimal.Decimal
	Inner    billing.Rule
	// DropOverCap removes over-cap lines instead of zeroing them.
	DropOverCap bool
	// Description is suffixed to rewritten lines; DefaultCapDescription
	// when empty.
	Description string
}

func (r *Capped) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	var out []*billing.Line
	for _, line := range r.Inner.Invoice(ev, ctx) {
		acc := ctx.Accumulated(line.AccountID, r.Variable)
		switch {
		case acc.GreaterThanOrEqual(r.Cap):
			if r.DropOverCap {
				continue
			}
			line = r.rewrite(line, decimal.Zero)
		case acc.Add(line.Amount).GreaterThan(r.Cap):
			line = r.rewrite(line, r.Cap.Sub(acc))
		}
		ctx.SetAccumulated(line.AccountID, r.Variable, acc.Add(line.Amount))
		out = append(out, line)
	}
	return out
}

func (r *Capped) rewrite(l *billing.Line, capped decimal.Decimal) *billing.Line {
	desc := r.Description
	if desc == "" {
		desc = DefaultCapDescription
	}
	nl := *l
	nl.Amount = capped
	nl.Description = l.Description + ", " + desc
	nl.Rule = r
	return &nl
}

// Debug is a transparent wrapper that reports inner results without
// altering them.
type Debug struct {
	Inner billing.Rule
	// Should decides whether to log; by default any non-empty result is
	// logged.
	Should func(ev billing.Event, lines []*billing.Line) bool
	// Log receives the event and the inner result.
	Log func(ev billing.Event, lines []*billing.Line)
}

func (r *Debug) Invoice(ev billing.Event, ctx *billing.Context) []*billing.Line {
	lines := r.Inner.Invoice(ev, ctx)
	should := r.Should
	if should == nil {
		should = func(_ billing.Event, ls []*billing.Line) bool { return len(ls) > 0 }
	}
	if should(ev, lines) {
		if r.Log != nil {
			r.Log(ev, lines)
		} else {
			log.Printf("%v -> %d lines", ev, len(lines))
		}
	}
	return lines
}
