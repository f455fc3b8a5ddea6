package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/shopspring/decimal"
)

// Transaction is one booked bank transaction from an NDA statement file.
type Transaction struct {
	// IBAN is the statement account the transaction was booked on.
	IBAN          string
	LedgerDate    time.Time
	ValueDate     time.Time
	PaymentDate   time.Time
	Cents         int64
	Name          string
	RecipientIBAN string
	RecipientBIC  string
	Operation     string
	// Ref is the payment reference with bank zero-padding stripped.
	Ref     string
	Message string
	Receipt string
}

// Fixed-format record layout. The statement header (T00) carries the
// account IBAN; each transaction record (T10) is a fixed-width line with
// the following byte ranges.
const (
	ndaRecordType = 3 // "T00" / "T10"

	ndaIBANEnd = 37

	ndaLedgerDateEnd  = 9
	ndaValueDateEnd   = 15
	ndaPaymentDateEnd = 21
	ndaSignEnd        = 22
	ndaAmountEnd      = 36
	ndaNameEnd        = 71
	ndaRecipientEnd   = 105
	ndaBICEnd         = 116
	ndaOperationEnd   = 126
	ndaRefEnd         = 146
	ndaMessageEnd     = 216
	ndaReceiptEnd     = 217
)

// ReadNDA parses the transaction records of an NDA statement stream.
// Record types other than the statement header and the basic transaction
// record are skipped.
func ReadNDA(r io.Reader, file string) ([]Transaction, error) {
	var (
		txns []Transaction
		iban string
		row  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		row++
		line := sc.Text()
		if len(line) < ndaRecordType {
			continue
		}
		switch line[:ndaRecordType] {
		case "T00":
			if len(line) < ndaIBANEnd {
				return nil, RowError{File: file, Row: row, Err: fmt.Errorf("short statement header")}
			}
			iban = strings.TrimSpace(line[ndaRecordType:ndaIBANEnd])
		case "T10":
			txn, err := parseTransaction(line, iban)
			if err != nil {
				return nil, RowError{File: file, Row: row, Err: err}
			}
			txns = append(txns, txn)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

func parseTransaction(line, iban string) (Transaction, error) {
	if len(line) < ndaMessageEnd {
		return Transaction{}, fmt.Errorf("short transaction record (%d bytes)", len(line))
	}
	ledger, err := ndaDate(line[ndaRecordType:ndaLedgerDateEnd])
	if err != nil {
		return Transaction{}, err
	}
	value, err := ndaDate(line[ndaLedgerDateEnd:ndaValueDateEnd])
	if err != nil {
		return Transaction{}, err
	}
	payment, err := ndaDate(line[ndaValueDateEnd:ndaPaymentDateEnd])
	if err != nil {
		return Transaction{}, err
	}
	cents, err := strconv.ParseInt(strings.TrimLeft(line[ndaSignEnd:ndaAmountEnd], "0 "), 10, 64)
	if err != nil {
		if strings.TrimLeft(line[ndaSignEnd:ndaAmountEnd], "0 ") == "" {
			cents = 0
		} else {
			return Transaction{}, fmt.Errorf("invalid amount %q", line[ndaSignEnd:ndaAmountEnd])
		}
	}
	if line[ndaPaymentDateEnd:ndaSignEnd] == "-" {
		cents = -cents
	}
	txn := Transaction{
		IBAN:          iban,
		LedgerDate:    ledger,
		ValueDate:     value,
		PaymentDate:   payment,
		Cents:         cents,
		Name:          strings.TrimSpace(line[ndaAmountEnd:ndaNameEnd]),
		RecipientIBAN: strings.TrimSpace(line[ndaNameEnd:ndaRecipientEnd]),
		RecipientBIC:  strings.TrimSpace(line[ndaRecipientEnd:ndaBICEnd]),
		Operation:     strings.TrimSpace(line[ndaBICEnd:ndaOperationEnd]),
		Ref:           strings.TrimLeft(strings.TrimSpace(line[ndaOperationEnd:ndaRefEnd]), "0"),
		Message:       strings.TrimSpace(line[ndaRefEnd:ndaMessageEnd]),
	}
	if len(line) >= ndaReceiptEnd {
		txn.Receipt = strings.TrimSpace(line[ndaMessageEnd:ndaReceiptEnd])
	}
	return txn, nil
}

// ndaDate parses the YYMMDD dates of the record; the century pivot is at
// 1970, like the bank's own tooling.
func ndaDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("060102", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

var cent = decimal.New(1, -2)

// LiftTransactions converts incoming transactions on the club's accounts
// into simple events. Only transactions with a positive amount and a
// reference of an allowed account id length qualify; the amount's sign is
// reversed, since incoming money reduces the account's debt.
func LiftTransactions(txns []Transaction, accountIBANs []string, period *date.Period) []billing.Event {
	allowed := make(map[string]bool, len(accountIBANs))
	for _, iban := range accountIBANs {
		allowed[iban] = true
	}
	var events []billing.Event
	for _, txn := range txns {
		if !allowed[txn.IBAN] {
			continue
		}
		if txn.Cents <= 0 {
			continue
		}
		if n := len(txn.Ref); n != 4 && n != 6 {
			continue
		}
		if period != nil && !period.Contains(txn.PaymentDate) {
			continue
		}
		events = append(events, &billing.SimpleEvent{
			AccountID: txn.Ref,
			Date:      txn.PaymentDate,
			Item:      fmt.Sprintf("Pankkisiirto, %s", txn.Name),
			Amount:    decimal.NewFromInt(txn.Cents).Mul(cent).Neg(),
		})
	}
	return events
}
