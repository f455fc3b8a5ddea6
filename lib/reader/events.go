package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jtuo/pik-laskutin/lib/amount"
	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/date"
)

// ReadSimpleEvents parses the positional simple event CSV: date, account
// id, item, amount, then optional ledger account id, ledger year and
// rollup flag.
func ReadSimpleEvents(r io.Reader, file string) ([]billing.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var events []billing.Event
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		if len(rec) == 0 || strings.HasPrefix(strings.TrimSpace(rec[0]), "#") {
			continue
		}
		if len(rec) < 4 {
			return nil, RowError{File: file, Row: row, Err: fmt.Errorf("expected at least 4 columns, got %d", len(rec))}
		}
		d, err := date.Parse(rec[0])
		if err != nil {
			return nil, RowError{File: file, Row: row, Err: err}
		}
		account := strings.TrimSpace(rec[1])
		if account == "" {
			return nil, RowError{File: file, Row: row, Err: fmt.Errorf("empty account id")}
		}
		amt, err := amount.Parse(rec[3])
		if err != nil {
			return nil, RowError{File: file, Row: row, Err: err}
		}
		ev := &billing.SimpleEvent{
			AccountID: account,
			Date:      d,
			Item:      strings.TrimSpace(rec[2]),
			Amount:    amt,
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			ev.LedgerAccountID, err = strconv.Atoi(strings.TrimSpace(rec[4]))
			if err != nil {
				return nil, RowError{File: file, Row: row, Err: err}
			}
		}
		if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
			ev.LedgerYear, err = strconv.Atoi(strings.TrimSpace(rec[5]))
			if err != nil {
				return nil, RowError{File: file, Row: row, Err: err}
			}
		}
		if len(rec) > 6 {
			ev.Rollup = parseFlag(rec[6])
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
