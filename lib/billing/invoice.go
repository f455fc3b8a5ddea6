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

package billing

import (
	"sort"
	"time"

	"github.com/jtuo/pik-laskutin/lib/amount"
	"github.com/shopspring/decimal"
)

// Invoice is the set of charge lines billed to one account.
type Invoice struct {
	AccountID string
	Date      time.Time
	// Lines are sorted by date ascending, stable by emission order.
	Lines []*Line
}

// Total sums the line amounts.
func (i *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// IsZero reports whether the invoice total vanishes at display precision.
func (i *Invoice) IsZero() bool {
	return amount.IsZeroTotal(i.Total())
}

// GroupInvoices partitions lines by account and builds one invoice per
// account. Within an invoice the lines are ordered by date, preserving
// emission order on ties; invoices come out in ascending account id order.
func GroupInvoices(lines []*Line, invoiceDate time.Time) []*Invoice {
	byAccount := make(map[string][]*Line)
	for _, l := range lines {
		byAccount[l.AccountID] = append(byAccount[l.AccountID], l)
	}
	accounts := make([]string, 0, len(byAccount))
	for account := range byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	invoices := make([]*Invoice, 0, len(accounts))
	for _, account := range accounts {
		ls := byAccount[account]
		sort.SliceStable(ls, func(i, j int) bool {
			return ls[i].Date.Before(ls[j].Date)
		})
		invoices = append(invoices, &Invoice{
			AccountID: account,
			Date:      invoiceDate,
			Lines:     ls,
		})
	}
	return invoices
}
