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

// Package writer renders invoices and the ledger exports of a billing run.
package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jtuo/pik-laskutin/lib/amount"
	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/config"
	"github.com/shopspring/decimal"
)

// Formatter renders one invoice as human-readable text.
type Formatter interface {
	Format(w io.Writer, inv *billing.Invoice, description string) error
}

// ForID resolves the configured invoice_format to a formatter. The empty
// id selects the plain text format.
func ForID(id string) (Formatter, error) {
	switch id {
	case "", "plain":
		return plainFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown invoice format %q", id)
}

type plainFormatter struct{}

var _ Formatter = plainFormatter{}

const dateLayout = "02.01.2006"

// Format writes the invoice as a dated header, one row per charge line
// with the amount right aligned, a separator and the total.
func (plainFormatter) Format(w io.Writer, inv *billing.Invoice, description string) error {
	if _, err := fmt.Fprintf(w, "%s\n%s, %s\n\n", description, inv.AccountID, inv.Date.Format(dateLayout)); err != nil {
		return err
	}
	for _, l := range inv.Lines {
		if _, err := fmt.Fprintf(w, "%s %10s  %s\n", l.Date.Format(dateLayout), amount.Format(l.Amount), l.Description); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s\n", strings.Repeat("-", 22)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Yhteensä %13s\n", amount.Format(inv.Total()))
	return err
}

// WriteInvoices renders one text file per invoice into out_dir, named by
// account id. The directory is created; a prior CheckOutDir guards against
// mixing runs.
func WriteInvoices(cfg *config.Config, invoices []*billing.Invoice) error {
	f, err := ForID(cfg.InvoiceFormat)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}
	for _, inv := range invoices {
		var sb strings.Builder
		if err := f.Format(&sb, inv, cfg.Description); err != nil {
			return err
		}
		path := filepath.Join(cfg.OutDir, inv.AccountID+".txt")
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteTotals writes one account,total row per invoice.
func WriteTotals(path string, invoices []*billing.Invoice) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cw := csv.NewWriter(f)
	for _, inv := range invoices {
		if err := cw.Write([]string{inv.AccountID, amount.Format(inv.Total())}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRows exports the non-rollup charge lines as per-ledger-year CSV
// files. Lines without an explicit ledger year book to defaultYear.
func WriteRows(cfg *config.Config, lines []*billing.Line, defaultYear int) error {
	byYear := make(map[int][]*billing.Line)
	for _, l := range lines {
		if l.Rollup {
			continue
		}
		year := l.LedgerYear
		if year == 0 {
			year = defaultYear
		}
		byYear[year] = append(byYear[year], l)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, year := range years {
		if err := writeRowFile(cfg.RowCSVPath(year), byYear[year]); err != nil {
			return err
		}
	}
	return nil
}

func writeRowFile(path string, lines []*billing.Line) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"account_id", "date", "description", "amount", "ledger_account_id"}); err != nil {
		return err
	}
	for _, l := range lines {
		ledger := ""
		if l.LedgerAccountID != 0 {
			ledger = fmt.Sprint(l.LedgerAccountID)
		}
		row := []string{
			l.AccountID,
			l.Date.Format("2006-01-02"),
			l.Description,
			amount.Format(l.Amount),
			ledger,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContext snapshots the billing context as JSON.
func WriteContext(path string, ctx *billing.Context) error {
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Summary aggregates the run for the closing report.
type Summary struct {
	Invoices     int
	ZeroInvoices int
	// OwedToClub sums the positive invoice totals, OwedByClub the
	// negative ones as a positive number.
	OwedToClub decimal.Decimal
	OwedByClub decimal.Decimal
}

// Summarize tallies the grouped invoices, zero invoices included.
func Summarize(invoices []*billing.Invoice) Summary {
	s := Summary{
		OwedToClub: decimal.Zero,
		OwedByClub: decimal.Zero,
	}
	for _, inv := range invoices {
		s.Invoices++
		if inv.IsZero() {
			s.ZeroInvoices++
			continue
		}
		total := inv.Total()
		if total.IsPositive() {
			s.OwedToClub = s.OwedToClub.Add(total)
		} else {
			s.OwedByClub = s.OwedByClub.Add(total.Neg())
		}
	}
	return s
}

// Render prints the closing report.
func (s Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "Invoices: %d (%d with zero balance)\n", s.Invoices, s.ZeroInvoices)
	fmt.Fprintf(w, "Owed to club:  %s\n", amount.Format(s.OwedToClub))
	fmt.Fprintf(w, "Owed by club:  %s\n", amount.Format(s.OwedByClub))
	fmt.Fprintf(w, "Difference:    %s\n", amount.Format(s.OwedToClub.Sub(s.OwedByClub)))
}
