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

// Package rules builds the per-year pricing rule trees. The trees are data:
// one yearSet per billing year, flattened into the combinators of the rule
// package. Prices are hourly rates in euros unless noted otherwise.
package rules

import (
	"fmt"
	"time"

	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/billing/filter"
	"github.com/jtuo/pik-laskutin/lib/billing/rule"
	"github.com/jtuo/pik-laskutin/lib/date"
)

// Ledger accounts on which charge lines are recognized.
const (
	acctGliderFlight = 3220 // Pursilentotulot
	acctTow          = 3130 // Hinauslentotulot
	acctDDS          = 3101
	acctCAO          = 3100
	acctMotor1037    = 3150 // Lentotuntitulot jäseniltä
	acctTowing       = 3170 // Muut lentotoiminnan tulot
	acctInstruction  = 3470 // Muut tulot koulutustoiminnasta
	acctEquipment    = 3010
	acctSurcharge    = 3610 // Hallinnon tulot
)

// Metadata carries the loaded side tables the rule sets key off.
type Metadata struct {
	// BirthDates maps account ids to ISO 8601 birth dates.
	BirthDates map[string]string
	// CourseMembers are accounts enrolled in a training course.
	CourseMembers map[string]bool
}

// juniorMaxAge bounds the junior discount, in years at flight time.
const juniorMaxAge = 25

// gliderPricing prices one glider for one year. Zero tier prices mean the
// tier is free once its package is active, as in the original price lists.
type gliderPricing struct {
	aircraft string
	hourly   int64
	course   int64 // applies under an active kurssikönttä
	pkg      int64 // applies under an active pursikönttä
	junior   int64 // junior hourly override, 0 = no junior price
}

type towPricing struct {
	period date.Period
	price  int64
}

type flatRate struct {
	aircraft string
	price    int64
	acct     int
}

// segmentRate is a flat hourly rate valid only for part of the year, used
// when an aircraft changed price mid-year.
type segmentRate struct {
	aircraft string
	period   date.Period
	price    int64
	acct     int
}

// yearSet is the complete price configuration of one billing year.
type yearSet struct {
	year        int
	gliders     []gliderPricing
	tow         []towPricing
	flats       []flatRate
	segments    []segmentRate
	gliderFleet []string
	motorFleet  []string
	// towMinimum, when positive, bills short tows at this many minutes.
	towMinimum int64
	// noMotorCapOnTransferTow excludes transfer tows from the motor
	// equipment cap.
	noMotorCapOnTransferTow bool
	// courseDeal is false from 2021 on, when kurssikönttä was
	// discontinued.
	courseDeal bool
}

func variable(kind string, year int) string {
	return fmt.Sprintf("%s_%d", kind, year)
}

// MakeRules builds the full rule list: a pass-through for pre-2014 items
// plus one ledger-year-stamped tree per billing year.
func MakeRules(ctx *billing.Context, meta Metadata) []billing.Rule {
	rs := []billing.Rule{
		// Simple events from before the rule years are passed through as-is.
		&rule.Simple{Filters: []filter.Filter{
			filter.Period{Period: date.NewPeriod(date.Date(2010, time.January, 1), date.Date(2013, time.December, 31))},
		}},
	}
	for _, ys := range yearSets {
		rs = append(rs, &rule.SetLedgerYear{
			Inner: &rule.AllOf{Rules: ys.build(ctx, meta)},
			Year:  ys.year,
		})
	}
	return rs
}

func (ys yearSet) build(ctx *billing.Context, meta Metadata) []billing.Rule {
	year := filter.Period{Period: date.FullYear(ys.year)}
	var rs []billing.Rule

	for _, fr := range ys.flats {
		rs = append(rs, &rule.Flight{
			Pricer:          rule.HourlyRate(fr.price),
			LedgerAccountID: fr.acct,
			Filters:         []filter.Filter{filter.Aircraft{Aircraft: []string{fr.aircraft}}, year},
		})
	}
	for _, sr := range ys.segments {
		rs = append(rs, &rule.Flight{
			Pricer:          rule.HourlyRate(sr.price),
			LedgerAccountID: sr.acct,
			Filters: []filter.Filter{
				filter.Aircraft{Aircraft: []string{sr.aircraft}},
				filter.Period{Period: sr.period},
			},
		})
	}

	for _, tp := range ys.tow {
		rs = append(rs, ys.towRule(tp))
	}

	for _, gp := range ys.gliders {
		rs = append(rs, ys.gliderRule(ctx, meta, gp))
	}

	// Koululentomaksu: fixed instruction fee per training flight. Course
	// members pay it through their course package instead.
	instructionFilters := []filter.Filter{
		filter.Aircraft{Aircraft: ys.gliderFleet},
		year,
		filter.Purpose{Purposes: []string{"KOU"}},
	}
	if len(meta.CourseMembers) > 0 {
		instructionFilters = append(instructionFilters,
			filter.MemberList{Members: meta.CourseMembers, Whitelist: false})
	}
	rs = append(rs, &rule.Flight{
		Pricer:          rule.Fixed(5),
		LedgerAccountID: acctInstruction,
		Filters:         instructionFilters,
		Template:        "Koululentomaksu, {aircraft}",
	})

	rs = append(rs, ys.equipmentCaps(year))
	rs = append(rs, ys.simpleEvents(year))

	// Laskutuslisä for flights flagged with an invoicing comment.
	allCraft := append(append([]string{}, ys.motorFleet...), ys.gliderFleet...)
	rs = append(rs, &rule.Flight{
		Pricer:          rule.Fixed(2),
		LedgerAccountID: acctSurcharge,
		Filters: []filter.Filter{
			filter.Aircraft{Aircraft: allCraft},
			year,
			filter.InvoicingCharge{},
		},
		Template: "Laskutuslisä, {aircraft}, {comment}",
	})
	return rs
}

// towRule discriminates transfer tows from member tows; both sides share
// the period's price but book on different ledger accounts.
func (ys yearSet) towRule(tp towPricing) billing.Rule {
	tow := filter.Aircraft{Aircraft: []string{"TOW"}}
	period := filter.Period{Period: tp.period}
	var r billing.Rule = &rule.FirstOf{Rules: []billing.Rule{
		&rule.Flight{
			Pricer:          rule.HourlyRate(tp.price),
			LedgerAccountID: acctTowing,
			Filters:         []filter.Filter{tow, period, filter.TransferTow{}},
			Template:        "Siirtohinaus, {duration} min",
		},
		&rule.Flight{
			Pricer:          rule.HourlyRate(tp.price),
			LedgerAccountID: acctTow,
			Filters:         []filter.Filter{tow, period},
		},
	}}
	if ys.towMinimum > 0 {
		r = &rule.MinimumDuration{
			Inner:    r,
			Aircraft: []filter.Filter{tow},
			Minimum:  decimalFromInt(ys.towMinimum),
			Suffix:   fmt.Sprintf("(min %d min)", ys.towMinimum),
		}
	}
	return r
}

// gliderRule is the pricing tier ladder for one glider: package price,
// course price, junior price, then the normal hourly rate. The first tier
// whose filters pass wins.
func (ys yearSet) gliderRule(ctx *billing.Context, meta Metadata, gp gliderPricing) billing.Rule {
	base := []filter.Filter{
		filter.Period{Period: date.FullYear(ys.year)},
		filter.Aircraft{Aircraft: []string{gp.aircraft}},
	}
	tiers := []billing.Rule{
		&rule.Flight{
			Pricer:          rule.HourlyRate(gp.pkg),
			LedgerAccountID: acctGliderFlight,
			Filters: append(append([]filter.Filter{}, base...),
				filter.SinceDate{Ctx: ctx, Variable: variable("pursikönttä", ys.year)}),
			Template: "Lento, pursiköntällä, {aircraft}, {duration} min",
		},
	}
	if ys.courseDeal {
		tiers = append(tiers, &rule.Flight{
			Pricer:          rule.HourlyRate(gp.course),
			LedgerAccountID: acctGliderFlight,
			Filters: append(append([]filter.Filter{}, base...),
				filter.SinceDate{Ctx: ctx, Variable: variable("kurssikönttä", ys.year)}),
			Template: "Lento, kurssiköntällä, {aircraft}, {duration} min, {purpose}",
		})
	}
	if gp.junior > 0 && len(meta.BirthDates) > 0 {
		tiers = append(tiers, &rule.Flight{
			Pricer:          rule.HourlyRate(gp.junior),
			LedgerAccountID: acctGliderFlight,
			Filters: append(append([]filter.Filter{}, base...),
				filter.BirthDate{BirthDates: meta.BirthDates, MaxAge: juniorMaxAge}),
			Template: "Lento, junnuhinta, {aircraft}, {duration} min",
		})
	}
	tiers = append(tiers, &rule.Flight{
		Pricer:          rule.HourlyRate(gp.hourly),
		LedgerAccountID: acctGliderFlight,
		Filters:         base,
	})
	return &rule.FirstOf{Rules: tiers}
}

// equipmentCaps is the nested kausimaksu accumulator: 70 euros per glider
// and motor sub-cap, 90 euros overall.
func (ys yearSet) equipmentCaps(year filter.Filter) billing.Rule {
	motorFilters := []filter.Filter{year, filter.Aircraft{Aircraft: ys.motorFleet}}
	if ys.noMotorCapOnTransferTow {
		motorFilters = append(motorFilters, filter.Not(filter.TransferTow{}))
	}
	return &rule.Capped{
		Variable: variable("kausimaksu_tot", ys.year),
		Cap:      decimalFromInt(90),
		Inner: &rule.AllOf{Rules: []billing.Rule{
			&rule.Capped{
				Variable: variable("kausimaksu_pursi", ys.year),
				Cap:      decimalFromInt(70),
				Inner: &rule.Flight{
					Pricer:          rule.HourlyRate(10),
					LedgerAccountID: acctEquipment,
					Filters:         []filter.Filter{year, filter.Aircraft{Aircraft: ys.gliderFleet}},
					Template:        "Kalustomaksu, {aircraft}, {duration} min",
				},
			},
			&rule.Capped{
				Variable: variable("kausimaksu_motti", ys.year),
				Cap:      decimalFromInt(70),
				Inner: &rule.Flight{
					Pricer:          rule.HourlyRate(10),
					LedgerAccountID: acctEquipment,
					Filters:         motorFilters,
					Template:        "Kalustomaksu, {aircraft}, {duration} min",
				},
			},
		}},
	}
}

// simpleEvents routes manual ledger items: package purchases record their
// date in the context before the generic positive/negative pass-throughs.
func (ys yearSet) simpleEvents(year filter.Filter) billing.Rule {
	tiers := []billing.Rule{
		&rule.SetDate{
			Variable: variable("pursikönttä", ys.year),
			Inner:    &rule.Simple{Filters: []filter.Filter{year, filter.ItemPattern(".*[pP]ursikönttä.*")}},
		},
	}
	if ys.courseDeal {
		tiers = append(tiers, &rule.SetDate{
			Variable: variable("kurssikönttä", ys.year),
			Inner:    &rule.Simple{Filters: []filter.Filter{year, filter.ItemPattern(".*[kK]urssikönttä.*")}},
		})
	}
	tiers = append(tiers,
		&rule.Simple{Filters: []filter.Filter{year, filter.PositiveAmount{}}},
		&rule.Simple{Filters: []filter.Filter{year, filter.NegativeAmount{}}},
	)
	return &rule.FirstOf{Rules: tiers}
}
