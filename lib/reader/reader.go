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

// Package reader loads events, id sets and billing context from the
// configured input files. Files are read concurrently, but the merged
// event stream is sorted by date with file order as the tie break, so the
// engine input is deterministic.
package reader

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/config"
	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/jtuo/pik-laskutin/lib/rules"
	"github.com/sourcegraph/conc/pool"
)

// RowError reports an unusable input row.
type RowError struct {
	File string
	Row  int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s: row %d: %v", e.File, e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// LoadEvents reads all configured event sources and returns the merged,
// date-ordered stream.
func LoadEvents(cfg *config.Config) ([]billing.Event, error) {
	type source struct {
		file string
		kind int
	}
	const (
		kindSimple = iota
		kindFlight
		kindNDA
	)
	var sources []source
	for _, f := range cfg.EventFiles {
		sources = append(sources, source{f, kindSimple})
	}
	for _, f := range cfg.FlightFiles {
		sources = append(sources, source{f, kindFlight})
	}
	for _, f := range cfg.NDAFiles {
		sources = append(sources, source{f, kindNDA})
	}

	var bankPeriod *date.Period
	if len(cfg.BankTxnDates) == 2 {
		from, err := date.Parse(cfg.BankTxnDates[0])
		if err != nil {
			return nil, err
		}
		to, err := date.Parse(cfg.BankTxnDates[1])
		if err != nil {
			return nil, err
		}
		p := date.NewPeriod(from, to)
		bankPeriod = &p
	}

	loaded := make([][]billing.Event, len(sources))
	p := pool.New().WithErrors().WithFirstError()
	for i, src := range sources {
		i, src := i, src
		p.Go(func() error {
			f, err := os.Open(src.file)
			if err != nil {
				return err
			}
			defer f.Close()
			switch src.kind {
			case kindSimple:
				loaded[i], err = ReadSimpleEvents(f, src.file)
			case kindFlight:
				loaded[i], err = ReadFlights(f, src.file)
			case kindNDA:
				txns, nerr := ReadNDA(f, src.file)
				if nerr != nil {
					return nerr
				}
				loaded[i] = LiftTransactions(txns, clubIBANs, bankPeriod)
			}
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	var events []billing.Event
	for _, evs := range loaded {
		events = append(events, evs...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time().Before(events[j].Time())
	})
	return events, nil
}

// clubIBANs are the club bank accounts whose incoming transactions are
// lifted into billing events.
var clubIBANs = []string{"FI2413093000112458"}

// ReadIDs reads account id files, one id per line, '#' comments and blank
// lines ignored.
func ReadIDs(files []string) (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			ids[line] = true
		}
	}
	return ids, nil
}

// LoadMetadata reads the birth date and course member side tables.
func LoadMetadata(cfg *config.Config) (rules.Metadata, error) {
	meta := rules.Metadata{
		BirthDates:    make(map[string]string),
		CourseMembers: make(map[string]bool),
	}
	if len(cfg.BirthDateFiles) > 0 {
		bd, err := ReadBirthDates(cfg.BirthDateFiles)
		if err != nil {
			return meta, err
		}
		meta.BirthDates = bd
	}
	if len(cfg.CourseMemberFiles) > 0 {
		members, err := ReadIDs(cfg.CourseMemberFiles)
		if err != nil {
			return meta, err
		}
		meta.CourseMembers = members
	}
	return meta, nil
}

// ReadBirthDates reads account_id,birth_date rows. Dates in Finnish
// notation are normalized to ISO 8601.
func ReadBirthDates(files []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		for i, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, ",", 2)
			if len(parts) != 2 {
				return nil, RowError{File: file, Row: i + 1, Err: fmt.Errorf("expected account_id,birth_date")}
			}
			account := strings.TrimSpace(parts[0])
			d, err := date.Parse(parts[1])
			if err != nil {
				return nil, RowError{File: file, Row: i + 1, Err: err}
			}
			result[account] = d.Format("2006-01-02")
		}
	}
	return result, nil
}

// LoadContext reads the billing context snapshot; a missing file yields an
// empty context, as on the first run of a billing year.
func LoadContext(path string) (*billing.Context, error) {
	if path == "" {
		return billing.NewContext(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return billing.NewContext(), nil
	}
	if err != nil {
		return nil, err
	}
	ctx := billing.NewContext()
	if err := json.Unmarshal(data, ctx); err != nil {
		return nil, fmt.Errorf("context file %s: %w", path, err)
	}
	return ctx, nil
}
