package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/shopspring/decimal"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := NewContext()
	ctx.SetAccumulated("1234", "kausimaksu_tot_2014", decimal.RequireFromString("72.50"))
	ctx.SetAccumulated("1234", "kausimaksu_pursi_2014", decimal.NewFromInt(70))
	ctx.SetDate("5678", "pursikönttä_2014", date.Date(2014, 4, 12))

	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := NewContext()
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if acc := got.Accumulated("1234", "kausimaksu_tot_2014"); !acc.Equal(decimal.RequireFromString("72.5")) {
		t.Errorf("accumulated = %s, want 72.5", acc)
	}
	if acc := got.Accumulated("1234", "kausimaksu_pursi_2014"); !acc.Equal(decimal.NewFromInt(70)) {
		t.Errorf("accumulated = %s, want 70", acc)
	}
	d, ok := got.Date("5678", "pursikönttä_2014")
	if !ok || !d.Equal(date.Date(2014, 4, 12)) {
		t.Errorf("date = %s, %t, want 2014-04-12", d, ok)
	}
	if acc := got.Accumulated("9999", "unset"); !acc.IsZero() {
		t.Errorf("unset accumulator = %s, want 0", acc)
	}
}

func TestContextUnmarshalLegacyStrings(t *testing.T) {
	// Older snapshots store accumulators as decimal strings.
	data := []byte(`{"1234": {"kausimaksu_tot_2014": "12.50", "pursikönttä_2014": "2014-04-12"}}`)
	ctx := NewContext()
	if err := json.Unmarshal(data, ctx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if acc := ctx.Accumulated("1234", "kausimaksu_tot_2014"); !acc.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("accumulated = %s, want 12.5", acc)
	}
	if _, ok := ctx.Date("1234", "pursikönttä_2014"); !ok {
		t.Error("expected a date value")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	ctx := NewContext()
	ctx.SetAccumulated("1234", "v", decimal.NewFromInt(10))
	snap := ctx.Snapshot()
	ctx.SetAccumulated("1234", "v", decimal.NewFromInt(20))
	if acc := snap.Accumulated("1234", "v"); !acc.Equal(decimal.NewFromInt(10)) {
		t.Errorf("snapshot accumulated = %s, want 10", acc)
	}
}

func TestGroupInvoices(t *testing.T) {
	var (
		invoiceDate = date.Date(2014, 11, 1)
		lines       = []*Line{
			{AccountID: "5678", Date: date.Date(2014, 6, 1), Description: "b", Amount: decimal.NewFromInt(2)},
			{AccountID: "1234", Date: date.Date(2014, 7, 1), Description: "late", Amount: decimal.NewFromInt(3)},
			{AccountID: "1234", Date: date.Date(2014, 5, 1), Description: "early", Amount: decimal.NewFromInt(1)},
			{AccountID: "1234", Date: date.Date(2014, 5, 1), Description: "early2", Amount: decimal.NewFromInt(4)},
		}
		want = []*Invoice{
			{
				AccountID: "1234",
				Date:      invoiceDate,
				Lines: []*Line{
					{AccountID: "1234", Date: date.Date(2014, 5, 1), Description: "early", Amount: decimal.NewFromInt(1)},
					{AccountID: "1234", Date: date.Date(2014, 5, 1), Description: "early2", Amount: decimal.NewFromInt(4)},
					{AccountID: "1234", Date: date.Date(2014, 7, 1), Description: "late", Amount: decimal.NewFromInt(3)},
				},
			},
			{
				AccountID: "5678",
				Date:      invoiceDate,
				Lines: []*Line{
					{AccountID: "5678", Date: date.Date(2014, 6, 1), Description: "b", Amount: decimal.NewFromInt(2)},
				},
			},
		}
	)

	got := GroupInvoices(lines, invoiceDate)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected diff (-want/+got):\n%s", diff)
	}
	if total := got[0].Total(); !total.Equal(decimal.NewFromInt(8)) {
		t.Errorf("total = %s, want 8", total)
	}
}

func TestInvoiceIsZero(t *testing.T) {
	var tests = []struct {
		desc    string
		amounts []string
		want    bool
	}{
		{desc: "empty", want: true},
		{desc: "cancels out", amounts: []string{"10", "-10"}, want: true},
		{desc: "below display precision", amounts: []string{"0.004"}, want: true},
		{desc: "one cent", amounts: []string{"0.01"}, want: false},
		{desc: "negative balance", amounts: []string{"-5"}, want: false},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			inv := &Invoice{AccountID: "1234", Date: time.Now()}
			for _, a := range test.amounts {
				inv.Lines = append(inv.Lines, &Line{Amount: decimal.RequireFromString(a)})
			}
			if got := inv.IsZero(); got != test.want {
				t.Errorf("IsZero() = %t, want %t", got, test.want)
			}
		})
	}
}
