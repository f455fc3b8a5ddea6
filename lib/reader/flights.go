package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jtuo/pik-laskutin/lib/amount"
	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/shopspring/decimal"
)

// Column headers of the flight log export.
const (
	colDescription      = "Selite"
	colDate             = "Tapahtumapäivä"
	colAccount          = "Maksajan viitenumero"
	colTakeoff          = "Lähtöaika"
	colLanding          = "Laskeutumisaika"
	colDurationDecimal  = "Lentoaika_desimaalinen"
	colPurpose          = "Tarkoitus"
	colInvoicingComment = "Laskutuslisä syy"
)

// transferTowPurpose marks a tow flown to reposition an aircraft rather
// than to serve a member.
const transferTowPurpose = "SII"

var sixty = decimal.NewFromInt(60)

// ReadFlights parses the flight log CSV. The first row is a header; the
// aircraft registration is the first whitespace-separated token of the
// Selite column, with the country prefix stripped.
func ReadFlights(r io.Reader, file string) ([]billing.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", file, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colDescription, colDate, colAccount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", file, required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var events []billing.Event
	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++

		aircraft := aircraftToken(field(rec, colDescription))
		if aircraft == "" {
			return nil, RowError{File: file, Row: row, Err: fmt.Errorf("unknown aircraft registration in %q", field(rec, colDescription))}
		}
		d, err := date.Parse(field(rec, colDate))
		if err != nil {
			return nil, RowError{File: file, Row: row, Err: err}
		}
		account := field(rec, colAccount)
		if account == "" {
			return nil, RowError{File: file, Row: row, Err: fmt.Errorf("empty account id")}
		}
		duration, err := flightDuration(field(rec, colDurationDecimal), field(rec, colTakeoff), field(rec, colLanding))
		if err != nil {
			return nil, RowError{File: file, Row: row, Err: err}
		}
		purpose := field(rec, colPurpose)
		events = append(events, &billing.Flight{
			AccountID:        account,
			Date:             d,
			Aircraft:         aircraft,
			Duration:         duration,
			Purpose:          purpose,
			TransferTow:      purpose == transferTowPurpose,
			InvoicingComment: field(rec, colInvoicingComment),
		})
	}
	return events, nil
}

func aircraftToken(selite string) string {
	token, _, _ := strings.Cut(strings.TrimSpace(selite), " ")
	return strings.TrimPrefix(token, "OH-")
}

// flightDuration prefers the decimal hour column and falls back to the
// clock times when it is empty.
func flightDuration(decimalHours, takeoff, landing string) (decimal.Decimal, error) {
	if decimalHours != "" {
		hours, err := amount.Parse(decimalHours)
		if err != nil {
			return decimal.Zero, err
		}
		if hours.IsNegative() {
			return decimal.Zero, fmt.Errorf("negative flight time: %s", decimalHours)
		}
		return hours.Mul(sixty), nil
	}
	h0, m0, err := date.ParseClock(takeoff)
	if err != nil {
		return decimal.Zero, err
	}
	h1, m1, err := date.ParseClock(landing)
	if err != nil {
		return decimal.Zero, err
	}
	minutes := (h1*60 + m1) - (h0*60 + m0)
	if minutes < 0 {
		// Landing past midnight.
		minutes += 24 * 60
	}
	return decimal.NewFromInt(int64(minutes)), nil
}
