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

// Package ndaconvert splits bank statement files into per-account CSVs.
package ndaconvert

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jtuo/pik-laskutin/lib/amount"
	"github.com/jtuo/pik-laskutin/lib/reader"
	"github.com/shopspring/decimal"

	"github.com/spf13/cobra"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the ndaconvert command.
	var c = &cobra.Command{
		Use:   "ndaconvert <statement.nda>...",
		Short: "convert bank statements to CSV",
		Long:  `Parse NDA bank statement files and write one CSV of transactions per account IBAN.`,
		Args:  cobra.MinimumNArgs(1),
		Run:   r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	outDir string
}

func (r *runner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func (r *runner) setupFlags(c *cobra.Command) {
	c.Flags().StringVarP(&r.outDir, "out-dir", "o", ".", "directory for the CSV files")
}

func (r runner) execute(cmd *cobra.Command, args []string) error {
	byIBAN := make(map[string][]reader.Transaction)
	for _, file := range args {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		txns, err := reader.ReadNDA(f, file)
		f.Close()
		if err != nil {
			return err
		}
		for _, txn := range txns {
			byIBAN[txn.IBAN] = append(byIBAN[txn.IBAN], txn)
		}
	}

	ibans := make([]string, 0, len(byIBAN))
	for iban := range byIBAN {
		ibans = append(ibans, iban)
	}
	sort.Strings(ibans)

	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return err
	}
	for _, iban := range ibans {
		path := filepath.Join(r.outDir, iban+".csv")
		if err := writeCSV(path, byIBAN[iban]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d transactions\n", path, len(byIBAN[iban]))
	}
	return nil
}

var cent = decimal.New(1, -2)

func writeCSV(path string, txns []reader.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cw := csv.NewWriter(f)
	header := []string{
		"ledger_date", "value_date", "payment_date", "amount",
		"name", "recipient_iban", "recipient_bic", "operation", "ref", "msg",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, txn := range txns {
		row := []string{
			txn.LedgerDate.Format("2006-01-02"),
			txn.ValueDate.Format("2006-01-02"),
			txn.PaymentDate.Format("2006-01-02"),
			amount.Format(decimal.NewFromInt(txn.Cents).Mul(cent)),
			txn.Name,
			txn.RecipientIBAN,
			txn.RecipientBIC,
			txn.Operation,
			txn.Ref,
			txn.Message,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
