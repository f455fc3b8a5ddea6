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

// Package invoice implements the batch billing run.
package invoice

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/jtuo/pik-laskutin/cmd/flags"
	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/billing/engine"
	"github.com/jtuo/pik-laskutin/lib/billing/validate"
	"github.com/jtuo/pik-laskutin/lib/config"
	"github.com/jtuo/pik-laskutin/lib/reader"
	"github.com/jtuo/pik-laskutin/lib/rules"
	"github.com/jtuo/pik-laskutin/lib/writer"

	"github.com/spf13/cobra"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the invoice command.
	var c = &cobra.Command{
		Use:   "invoice <config.json>",
		Short: "run the batch billing pipeline",
		Long: `Load the configured event sources, evaluate the billing rules and
write per-account invoices, ledger exports and the updated billing context.`,
		Args: cobra.ExactArgs(1),
		Run:  r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	cpuprofile  string
	invoiceDate flags.DateFlag
}

func (r *runner) run(cmd *cobra.Command, args []string) {
	if r.cpuprofile != "" {
		f, err := os.Create(r.cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func (r *runner) setupFlags(c *cobra.Command) {
	c.Flags().StringVar(&r.cpuprofile, "cpuprofile", "", "file to write profile")
	c.Flags().Var(&r.invoiceDate, "invoice-date", "override the configured invoice date")
}

func (r runner) execute(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if !r.invoiceDate.Value().IsZero() {
		cfg.InvoiceDate = r.invoiceDate.Value().Format("2006-01-02")
	}
	if err := cfg.CheckOutDir(); err != nil {
		return err
	}
	ctx, err := reader.LoadContext(cfg.ContextFileIn)
	if err != nil {
		return err
	}
	meta, err := reader.LoadMetadata(cfg)
	if err != nil {
		return err
	}
	events, err := reader.LoadEvents(cfg)
	if err != nil {
		return err
	}
	ids, err := reader.ReadIDs(cfg.ValidIDFiles)
	if err != nil {
		return err
	}

	v := &validate.Validator{
		KnownIDs:    ids,
		ExternalIDs: skippedIDs(events, cfg.NoInvoicingPrefix),
	}
	v.Events(events).Render(out)

	eng := &engine.Engine{
		Rules:        rules.MakeRules(ctx, meta),
		Context:      ctx,
		SkipPrefixes: cfg.NoInvoicingPrefix,
	}
	lines, diag := eng.Run(events)

	invoices := billing.GroupInvoices(lines, cfg.ParsedInvoiceDate())
	var billable []*billing.Invoice
	for _, inv := range invoices {
		if !inv.IsZero() {
			billable = append(billable, inv)
		}
	}

	if err := writer.WriteInvoices(cfg, billable); err != nil {
		return err
	}
	if err := writer.WriteTotals(cfg.TotalCSVPath(), invoices); err != nil {
		return err
	}
	if err := writer.WriteRows(cfg, lines, cfg.ParsedInvoiceDate().Year()); err != nil {
		return err
	}
	if cfg.ContextFileOut != "" {
		if err := writer.WriteContext(cfg.ContextFileOut, ctx); err != nil {
			return err
		}
	}

	if n := len(diag.SkippedAccounts); n > 0 {
		fmt.Fprintf(out, "Skipped %d no-invoicing accounts: %s\n", n, strings.Join(diag.SortedSkippedAccounts(), ", "))
	}
	if n := len(diag.Unmatched); n > 0 {
		fmt.Fprintf(out, "Events without a matching rule: %d\n", n)
	}
	writer.Summarize(invoices).Render(out)
	return nil
}

// skippedIDs collects the account ids that a no-invoicing prefix excludes,
// so the validator does not flag them.
func skippedIDs(events []billing.Event, prefixes []string) map[string]bool {
	ids := make(map[string]bool)
	for _, ev := range events {
		account := strings.ToUpper(ev.Account())
		for _, prefix := range prefixes {
			if strings.HasPrefix(account, prefix) {
				ids[ev.Account()] = true
				break
			}
		}
	}
	return ids
}
