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

// Package date provides calendar dates and inclusive date ranges.
package date

import (
	"fmt"
	"strings"
	"time"
)

// Date creates a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Period is a closed date range [Start, End].
type Period struct {
	Start, End time.Time
}

// NewPeriod creates a period between the given dates.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end}
}

// FullYear returns the period covering the given calendar year.
func FullYear(year int) Period {
	return Period{Start: Date(year, time.January, 1), End: Date(year, time.December, 31)}
}

// Contains reports whether d falls within the period, boundaries included.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("%s - %s", p.Start.Format("02.01.2006"), p.End.Format("02.01.2006"))
}

// Parse parses a calendar date in ISO 8601 (2006-01-02) or Finnish
// (2.1.2006) notation.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2.1.2006", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

// ParseClock parses a time of day in HH:MM notation. A period is accepted
// in place of the colon, as some flight log exports use it.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", ":")
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time of day: %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day: %q", s)
	}
	return hour, minute, nil
}
