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

// Package config loads the billing run configuration. The configuration is
// a single JSON document; all relative paths in it resolve against the
// directory of the configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jtuo/pik-laskutin/lib/date"
)

// Config is the billing run configuration.
type Config struct {
	EventFiles        []string `json:"event_files"`
	FlightFiles       []string `json:"flight_files"`
	NDAFiles          []string `json:"nda_files"`
	BirthDateFiles    []string `json:"birth_date_files"`
	CourseMemberFiles []string `json:"course_member_files"`
	ValidIDFiles      []string `json:"valid_id_files"`

	// NoInvoicingPrefix lists uppercase account id prefixes that are
	// skipped before rule evaluation.
	NoInvoicingPrefix []string `json:"no_invoicing_prefix"`

	InvoiceDate string `json:"invoice_date"`

	ContextFileIn  string `json:"context_file_in"`
	ContextFileOut string `json:"context_file_out"`

	OutDir      string `json:"out_dir"`
	Description string `json:"description"`

	InvoiceFormat      string `json:"invoice_format"`
	TotalCSVName       string `json:"total_csv_name"`
	RowCSVNameTemplate string `json:"row_csv_name_template"`

	// BankTxnDates optionally restricts which bank transactions are
	// lifted into events, as [from, to] ISO dates.
	BankTxnDates []string `json:"bank_txn_dates"`
}

// Error is a fatal configuration error.
type Error struct {
	msg string
}

func (e Error) Error() string { return "config: " + e.msg }

func errorf(format string, args ...any) Error {
	return Error{msg: fmt.Sprintf(format, args...)}
}

// Load reads and validates the configuration file and resolves its paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorf("reading %s: %v", path, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errorf("parsing %s: %v", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.resolve(filepath.Dir(path))
	return &c, nil
}

func (c *Config) validate() error {
	if c.InvoiceDate == "" {
		return errorf("missing required key invoice_date")
	}
	if _, err := date.Parse(c.InvoiceDate); err != nil {
		return errorf("invalid invoice_date: %v", err)
	}
	if c.OutDir == "" {
		return errorf("missing required key out_dir")
	}
	if c.RowCSVNameTemplate != "" && strings.Count(c.RowCSVNameTemplate, "%s") != 1 {
		return errorf("row_csv_name_template must contain exactly one %%s")
	}
	for _, p := range c.NoInvoicingPrefix {
		if p != strings.ToUpper(p) {
			return errorf("no_invoicing_prefix entries must be uppercase: %q", p)
		}
	}
	return nil
}

func (c *Config) resolve(dir string) {
	for _, files := range [][]string{
		c.EventFiles, c.FlightFiles, c.NDAFiles,
		c.BirthDateFiles, c.CourseMemberFiles, c.ValidIDFiles,
	} {
		for i, f := range files {
			files[i] = resolvePath(dir, f)
		}
	}
	c.ContextFileIn = resolvePath(dir, c.ContextFileIn)
	c.ContextFileOut = resolvePath(dir, c.ContextFileOut)
	c.OutDir = resolvePath(dir, c.OutDir)
	c.TotalCSVName = resolvePath(dir, c.TotalCSVName)
	c.RowCSVNameTemplate = resolvePath(dir, c.RowCSVNameTemplate)
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// ParsedInvoiceDate returns the invoice date; validity was checked at load.
func (c *Config) ParsedInvoiceDate() time.Time {
	d, err := date.Parse(c.InvoiceDate)
	if err != nil {
		panic(err)
	}
	return d
}

// CheckOutDir fails when the output directory already exists, so that a
// run never mixes its output with a previous one.
func (c *Config) CheckOutDir() error {
	if _, err := os.Stat(c.OutDir); err == nil {
		return errorf("out_dir already exists: %s", c.OutDir)
	}
	return nil
}

// TotalCSVPath returns the configured totals file, defaulting into out_dir.
func (c *Config) TotalCSVPath() string {
	if c.TotalCSVName != "" {
		return c.TotalCSVName
	}
	return filepath.Join(c.OutDir, "totals.csv")
}

// RowCSVPath returns the per-year row export path for the given year.
func (c *Config) RowCSVPath(year int) string {
	tmpl := c.RowCSVNameTemplate
	if tmpl == "" {
		tmpl = filepath.Join(c.OutDir, "rows_%s.csv")
	}
	return fmt.Sprintf(tmpl, fmt.Sprint(year))
}
