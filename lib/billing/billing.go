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

// Package billing defines the billable event model, charge lines and the
// rule interface evaluated over them.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a billable occurrence attributed to an account. The concrete
// variants are Flight and SimpleEvent; rules discriminate with a type
// switch.
type Event interface {
	Account() string
	Time() time.Time
}

var (
	_ Event = (*Flight)(nil)
	_ Event = (*SimpleEvent)(nil)
)

// Flight is a single flight as recorded in the flight log.
type Flight struct {
	AccountID string
	Date      time.Time
	// Aircraft is the registration token, compared case-sensitively as stored.
	Aircraft string
	// Duration is the flight time in minutes.
	Duration decimal.Decimal
	// Purpose is a short code for the purpose of flight, e.g. "KOU".
	Purpose     string
	TransferTow bool
	// InvoicingComment, when non-empty, marks the flight for an
	// invoicing surcharge.
	InvoicingComment string
}

func (f *Flight) Account() string { return f.AccountID }
func (f *Flight) Time() time.Time { return f.Date }

func (f *Flight) String() string {
	return fmt.Sprintf("Flight(%s, %s, %s, %s min, %s)",
		f.AccountID, f.Date.Format("2006-01-02"), f.Aircraft, f.Duration, f.Purpose)
}

// SimpleEvent is a manual ledger item or an imported bank transaction.
type SimpleEvent struct {
	AccountID string
	Date      time.Time
	Item      string
	Amount    decimal.Decimal
	// LedgerAccountID is the external income account, 0 when the event
	// carries none.
	LedgerAccountID int
	// LedgerYear is the fiscal year, 0 when unset.
	LedgerYear int
	// Rollup excludes the resulting line from the per-row ledger export.
	Rollup bool
}

func (e *SimpleEvent) Account() string { return e.AccountID }
func (e *SimpleEvent) Time() time.Time { return e.Date }

func (e *SimpleEvent) String() string {
	return fmt.Sprintf("SimpleEvent(%s, %s, %s, %s)",
		e.AccountID, e.Date.Format("2006-01-02"), e.Item, e.Amount)
}

// Line is one atomic billable item produced by a rule.
type Line struct {
	AccountID   string
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	// Rule identifies the producing rule, used for grouping in exports.
	Rule Rule
	// Event is the source event the line was derived from.
	Event Event
	// LedgerAccountID is 0 when the line does not go into the ledger.
	LedgerAccountID int
	// LedgerYear may be stamped later by a wrapping rule; 0 means unset.
	LedgerYear int
	Rollup     bool
}

// Rule consumes an event and produces zero or more charge lines. Returning
// no lines means the rule did not match; it is not an error. Rules may read
// and write the billing context.
type Rule interface {
	Invoice(ev Event, ctx *Context) []*Line
}
