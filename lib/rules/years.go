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

package rules

import (
	"time"

	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/shopspring/decimal"
)

func decimalFromInt(i int64) decimal.Decimal { return decimal.NewFromInt(i) }

func period(y1 int, m1 time.Month, d1, y2 int, m2 time.Month, d2 int) date.Period {
	return date.NewPeriod(date.Date(y1, m1, d1), date.Date(y2, m2, d2))
}

// yearSets is the price history. Aircraft identifiers are the reference
// tokens used in the flight log, including the discounted pseudo-fleets
// ("650-kurssiale") the log uses for course-discounted flights.
var yearSets = []yearSet{
	{
		year: 2014,
		flats: []flatRate{
			{"DDS", 171, acctDDS},
			{"CAO", 134, acctCAO},
		},
		tow: []towPricing{
			{period(2014, time.January, 1, 2014, time.March, 31), 146},
			{period(2014, time.April, 1, 2014, time.December, 31), 104},
		},
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15},
			{aircraft: "787", hourly: 25, course: 10},
			{aircraft: "733", hourly: 25},
			{aircraft: "883", hourly: 32, course: 17},
			{aircraft: "952", hourly: 40},
		},
		gliderFleet:             []string{"650", "733", "787", "883", "952"},
		motorFleet:              []string{"DDS", "CAO", "TOW"},
		noMotorCapOnTransferTow: true,
		courseDeal:              true,
	},
	{
		year:  2015,
		flats: []flatRate{{"DDS", 171, acctDDS}},
		tow: []towPricing{
			{date.FullYear(2015), 104},
		},
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15},
			{aircraft: "787", hourly: 25, course: 10},
			{aircraft: "733", hourly: 25},
			{aircraft: "883", hourly: 32, course: 32, pkg: 10},
			{aircraft: "952", hourly: 40, course: 10, pkg: 10},
			{aircraft: "TK", hourly: 25, course: 10},
		},
		gliderFleet: []string{"650", "787", "733", "883", "952", "TK"},
		motorFleet:  []string{"DDS", "CAO", "TOW"},
		courseDeal:  true,
	},
	{
		year:  2016,
		flats: []flatRate{{"DDS", 171, acctDDS}},
		tow: []towPricing{
			{date.FullYear(2016), 104},
		},
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15},
			{aircraft: "787", hourly: 25, course: 10},
			{aircraft: "733", hourly: 25},
			{aircraft: "883", hourly: 32, course: 32, pkg: 10},
			{aircraft: "952", hourly: 40, course: 10, pkg: 10},
			{aircraft: "755", hourly: 25, course: 10},
		},
		gliderFleet: []string{"650", "787", "733", "883", "952", "755"},
		motorFleet:  []string{"TOW"},
		courseDeal:  true,
	},
	{
		year: 2017,
		tow: []towPricing{
			{date.FullYear(2017), 104},
		},
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15},
			{aircraft: "787", hourly: 25, course: 10},
			{aircraft: "733", hourly: 25},
			{aircraft: "883", hourly: 32, course: 32, pkg: 10},
			{aircraft: "952", hourly: 40, course: 10, pkg: 10},
		},
		gliderFleet: []string{"650", "787", "733", "883", "952"},
		motorFleet:  []string{"TOW"},
		courseDeal:  true,
	},
	{
		year: 2018,
		tow: []towPricing{
			{date.FullYear(2018), 129},
		},
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15},
			{aircraft: "787", hourly: 25, course: 10},
			{aircraft: "733", hourly: 25},
			{aircraft: "883", hourly: 32, course: 32, pkg: 10},
			{aircraft: "952", hourly: 40, course: 10, pkg: 10},
		},
		gliderFleet: []string{"650", "787", "733", "883", "952"},
		motorFleet:  []string{"TOW"},
		courseDeal:  true,
	},
	{
		year: 2019,
		tow: []towPricing{
			{period(2019, time.January, 1, 2019, time.April, 6), 129},
			{period(2019, time.April, 7, 2019, time.May, 31), 101},
			{period(2019, time.June, 1, 2019, time.December, 31), 102},
		},
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15},
			{aircraft: "787", hourly: 25, course: 10},
			{aircraft: "733", hourly: 25},
			{aircraft: "883", hourly: 32, course: 32, pkg: 10},
			{aircraft: "1035", hourly: 28, course: 28},
			{aircraft: "952", hourly: 40, course: 10, pkg: 10},
		},
		gliderFleet: []string{"650", "787", "733", "883", "952", "1035"},
		motorFleet:  []string{"TOW"},
		courseDeal:  true,
	},
	{
		year: 2020,
		tow: []towPricing{
			{period(2020, time.January, 1, 2020, time.March, 31), 102},
			{period(2020, time.April, 1, 2020, time.April, 30), 94},
			{period(2020, time.May, 1, 2020, time.July, 31), 90},
			{period(2020, time.August, 1, 2020, time.December, 31), 97},
		},
		flats: []flatRate{
			{"1037", 95, acctMotor1037},
			{"1037-opeale", 55, acctMotor1037},
		},
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15},
			{aircraft: "787", hourly: 25, course: 10},
			{aircraft: "733", hourly: 25},
			{aircraft: "883", hourly: 32, course: 32, pkg: 10},
			{aircraft: "1035", hourly: 28, course: 28, pkg: 5},
			{aircraft: "952", hourly: 40, course: 10, pkg: 10},
		},
		gliderFleet: []string{"650", "787", "733", "883", "952", "1035"},
		motorFleet:  []string{"TOW", "1037", "1037-opeale"},
		courseDeal:  true,
	},
	{
		year: 2021,
		tow: []towPricing{
			{period(2021, time.January, 1, 2021, time.February, 28), 97},
			{period(2021, time.March, 1, 2021, time.December, 31), 104},
		},
		flats: []flatRate{
			{"1037-opeale", 55, acctMotor1037},
		},
		segments: []segmentRate{
			{"1037", period(2021, time.January, 1, 2021, time.March, 24), 95, acctMotor1037},
			{"1037", period(2021, time.March, 25, 2021, time.December, 31), 96, acctMotor1037},
		},
		towMinimum: 15,
		gliders: []gliderPricing{
			{aircraft: "650", hourly: 15, junior: 10},
			{aircraft: "787", hourly: 25, junior: 20},
			{aircraft: "733", hourly: 25, junior: 20},
			{aircraft: "883", hourly: 32, pkg: 10},
			{aircraft: "1035", hourly: 28, pkg: 5},
			{aircraft: "952", hourly: 40, pkg: 10},
			{aircraft: "650-kurssiale", hourly: 10},
			{aircraft: "787-kurssiale", hourly: 20},
			{aircraft: "733-kurssiale", hourly: 20},
			{aircraft: "883-kurssiale", hourly: 32, pkg: 32},
			{aircraft: "1035-kurssiale", hourly: 28, pkg: 28},
			{aircraft: "952-kurssiale", hourly: 35, pkg: 35},
		},
		gliderFleet: []string{
			"650", "787", "733", "883", "952", "1035",
			"650-kurssiale", "787-kurssiale", "733-kurssiale",
			"883-kurssiale", "1035-kurssiale", "952-kurssiale",
		},
		motorFleet: []string{"TOW", "1037", "1037-opeale"},
	},
}
