package rules

import (
	"testing"

	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/billing/engine"
	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/shopspring/decimal"
)

func run(t *testing.T, meta Metadata, events ...billing.Event) []*billing.Line {
	t.Helper()
	ctx := billing.NewContext()
	e := &engine.Engine{
		Rules:   MakeRules(ctx, meta),
		Context: ctx,
	}
	lines, _ := e.Run(events)
	return lines
}

func onAccount(lines []*billing.Line, acct int) []*billing.Line {
	var out []*billing.Line
	for _, l := range lines {
		if l.LedgerAccountID == acct {
			out = append(out, l)
		}
	}
	return out
}

func TestGliderFlight2014(t *testing.T) {
	lines := run(t, Metadata{}, &billing.Flight{
		AccountID: "1234",
		Date:      date.Date(2014, 6, 15),
		Aircraft:  "650",
		Duration:  decimal.NewFromInt(24),
		Purpose:   "HAR",
	})

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	glider := onAccount(lines, acctGliderFlight)
	if len(glider) != 1 {
		t.Fatalf("expected 1 glider line, got %d", len(glider))
	}
	if want := decimal.NewFromInt(6); !glider[0].Amount.Equal(want) {
		t.Errorf("glider amount = %s, want %s", glider[0].Amount, want)
	}
	if want := "Lento, 650, 24 min"; glider[0].Description != want {
		t.Errorf("glider description = %q, want %q", glider[0].Description, want)
	}
	if glider[0].LedgerYear != 2014 {
		t.Errorf("ledger year = %d, want 2014", glider[0].LedgerYear)
	}
	equipment := onAccount(lines, acctEquipment)
	if len(equipment) != 1 {
		t.Fatalf("expected 1 equipment line, got %d", len(equipment))
	}
	if want := decimal.NewFromInt(4); !equipment[0].Amount.Equal(want) {
		t.Errorf("equipment amount = %s, want %s", equipment[0].Amount, want)
	}
}

func TestPackageDealActivation(t *testing.T) {
	lines := run(t, Metadata{},
		&billing.Flight{AccountID: "1234", Date: date.Date(2015, 4, 1), Aircraft: "883", Duration: decimal.NewFromInt(60), Purpose: "HAR"},
		&billing.SimpleEvent{AccountID: "1234", Date: date.Date(2015, 4, 12), Item: "Pursikönttä 2015", Amount: decimal.NewFromInt(650)},
		&billing.Flight{AccountID: "1234", Date: date.Date(2015, 5, 1), Aircraft: "883", Duration: decimal.NewFromInt(60), Purpose: "HAR"},
	)

	glider := onAccount(lines, acctGliderFlight)
	if len(glider) != 2 {
		t.Fatalf("expected 2 glider lines, got %d", len(glider))
	}
	if want := decimal.NewFromInt(32); !glider[0].Amount.Equal(want) {
		t.Errorf("pre-package amount = %s, want %s", glider[0].Amount, want)
	}
	if want := decimal.NewFromInt(10); !glider[1].Amount.Equal(want) {
		t.Errorf("post-package amount = %s, want %s", glider[1].Amount, want)
	}
	if want := "Lento, pursiköntällä, 883, 60 min"; glider[1].Description != want {
		t.Errorf("post-package description = %q, want %q", glider[1].Description, want)
	}

	packages := onAccount(lines, 0)
	if len(packages) != 1 {
		t.Fatalf("expected 1 package purchase line, got %d", len(packages))
	}
	if want := decimal.NewFromInt(650); !packages[0].Amount.Equal(want) {
		t.Errorf("package amount = %s, want %s", packages[0].Amount, want)
	}
}

func TestTransferTow2014(t *testing.T) {
	lines := run(t, Metadata{}, &billing.Flight{
		AccountID:   "1234",
		Date:        date.Date(2014, 6, 1),
		Aircraft:    "TOW",
		Duration:    decimal.NewFromInt(20),
		Purpose:     "SII",
		TransferTow: true,
	})

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %v", len(lines), lines)
	}
	if lines[0].LedgerAccountID != acctTowing {
		t.Errorf("ledger account = %d, want %d", lines[0].LedgerAccountID, acctTowing)
	}
	if want := "Siirtohinaus, 20 min"; lines[0].Description != want {
		t.Errorf("description = %q, want %q", lines[0].Description, want)
	}
	want := decimal.NewFromInt(104).Mul(decimal.NewFromInt(20)).Div(decimal.NewFromInt(60))
	if !lines[0].Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", lines[0].Amount, want)
	}
}

func TestMemberTowBooksOnTowAccount(t *testing.T) {
	lines := run(t, Metadata{}, &billing.Flight{
		AccountID: "1234",
		Date:      date.Date(2014, 6, 1),
		Aircraft:  "TOW",
		Duration:  decimal.NewFromInt(30),
		Purpose:   "HIN",
	})

	tow := onAccount(lines, acctTow)
	if len(tow) != 1 {
		t.Fatalf("expected 1 tow line, got %d", len(tow))
	}
	if want := decimal.NewFromInt(52); !tow[0].Amount.Equal(want) {
		t.Errorf("tow amount = %s, want %s", tow[0].Amount, want)
	}
	// Member tows pay the motor equipment fee.
	if equipment := onAccount(lines, acctEquipment); len(equipment) != 1 {
		t.Errorf("expected 1 equipment line, got %d", len(equipment))
	}
}

func TestTowMinimum2021(t *testing.T) {
	lines := run(t, Metadata{}, &billing.Flight{
		AccountID: "1234",
		Date:      date.Date(2021, 6, 1),
		Aircraft:  "TOW",
		Duration:  decimal.NewFromInt(10),
		Purpose:   "HIN",
	})

	tow := onAccount(lines, acctTow)
	if len(tow) != 1 {
		t.Fatalf("expected 1 tow line, got %d", len(tow))
	}
	if want := decimal.NewFromInt(26); !tow[0].Amount.Equal(want) {
		t.Errorf("tow amount = %s, want %s", tow[0].Amount, want)
	}
	if want := "Lento, TOW, 15 min (min 15 min)"; tow[0].Description != want {
		t.Errorf("description = %q, want %q", tow[0].Description, want)
	}
	// The equipment fee still follows the real duration.
	equipment := onAccount(lines, acctEquipment)
	if len(equipment) != 1 {
		t.Fatalf("expected 1 equipment line, got %d", len(equipment))
	}
	want := decimal.NewFromInt(10).Mul(decimal.NewFromInt(10)).Div(decimal.NewFromInt(60))
	if !equipment[0].Amount.Equal(want) {
		t.Errorf("equipment amount = %s, want %s", equipment[0].Amount, want)
	}
}

func TestInstructionFee(t *testing.T) {
	meta := Metadata{CourseMembers: map[string]bool{"5678": true}}
	flightFor := func(account string) *billing.Flight {
		return &billing.Flight{
			AccountID: account,
			Date:      date.Date(2014, 7, 1),
			Aircraft:  "650",
			Duration:  decimal.NewFromInt(30),
			Purpose:   "KOU",
		}
	}

	lines := run(t, meta, flightFor("1234"))
	instruction := onAccount(lines, acctInstruction)
	if len(instruction) != 1 {
		t.Fatalf("expected 1 instruction line, got %d", len(instruction))
	}
	if want := decimal.NewFromInt(5); !instruction[0].Amount.Equal(want) {
		t.Errorf("instruction amount = %s, want %s", instruction[0].Amount, want)
	}
	if want := "Koululentomaksu, 650"; instruction[0].Description != want {
		t.Errorf("description = %q, want %q", instruction[0].Description, want)
	}

	// Course members pay instruction through their package.
	lines = run(t, meta, flightFor("5678"))
	if instruction := onAccount(lines, acctInstruction); len(instruction) != 0 {
		t.Errorf("expected no instruction line for a course member, got %d", len(instruction))
	}
}

func TestJuniorDiscount2021(t *testing.T) {
	meta := Metadata{BirthDates: map[string]string{"1234": "2000-01-01"}}
	lines := run(t, meta, &billing.Flight{
		AccountID: "1234",
		Date:      date.Date(2021, 6, 15),
		Aircraft:  "650",
		Duration:  decimal.NewFromInt(30),
		Purpose:   "HAR",
	})

	glider := onAccount(lines, acctGliderFlight)
	if len(glider) != 1 {
		t.Fatalf("expected 1 glider line, got %d", len(glider))
	}
	if want := decimal.NewFromInt(5); !glider[0].Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", glider[0].Amount, want)
	}
	if want := "Lento, junnuhinta, 650, 30 min"; glider[0].Description != want {
		t.Errorf("description = %q, want %q", glider[0].Description, want)
	}
}

func TestEquipmentCapAcrossFlights(t *testing.T) {
	var events []billing.Event
	for day := 1; day <= 8; day++ {
		events = append(events, &billing.Flight{
			AccountID: "1234",
			Date:      date.Date(2014, 6, day),
			Aircraft:  "650",
			Duration:  decimal.NewFromInt(60),
			Purpose:   "HAR",
		})
	}

	lines := run(t, Metadata{}, events...)

	total := decimal.Zero
	for _, l := range onAccount(lines, acctEquipment) {
		total = total.Add(l.Amount)
	}
	if want := decimal.NewFromInt(70); !total.Equal(want) {
		t.Errorf("equipment total = %s, want %s", total, want)
	}
}

func TestInvoicingSurcharge(t *testing.T) {
	lines := run(t, Metadata{}, &billing.Flight{
		AccountID:        "1234",
		Date:             date.Date(2014, 8, 1),
		Aircraft:         "DDS",
		Duration:         decimal.NewFromInt(30),
		Purpose:          "HAR",
		InvoicingComment: "maksu myöhässä",
	})

	surcharge := onAccount(lines, acctSurcharge)
	if len(surcharge) != 1 {
		t.Fatalf("expected 1 surcharge line, got %d", len(surcharge))
	}
	if want := decimal.NewFromInt(2); !surcharge[0].Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", surcharge[0].Amount, want)
	}
	if want := "Laskutuslisä, DDS, maksu myöhässä"; surcharge[0].Description != want {
		t.Errorf("description = %q, want %q", surcharge[0].Description, want)
	}
}

func TestPre2014Passthrough(t *testing.T) {
	lines := run(t, Metadata{}, &billing.SimpleEvent{
		AccountID:       "1234",
		Date:            date.Date(2013, 5, 1),
		Item:            "Vanha saldo",
		Amount:          decimal.NewFromInt(120),
		LedgerAccountID: 3010,
		LedgerYear:      2013,
	})

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].LedgerYear != 2013 {
		t.Errorf("ledger year = %d, want 2013", lines[0].LedgerYear)
	}
	if want := decimal.NewFromInt(120); !lines[0].Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", lines[0].Amount, want)
	}
}
