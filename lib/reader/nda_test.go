package reader

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jtuo/pik-laskutin/lib/billing"
	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIBAN = "FI2413093000112458"

func header(iban string) string {
	return fmt.Sprintf("T00%-34s", iban)
}

func record(day string, sign string, cents int64, name, ref string) string {
	return fmt.Sprintf("T10%s%s%s%s%014d%-35s%-34s%-11s%-10s%020s%-70s1",
		day, day, day, sign, cents, name, "FI4950000120378442", "OKOYFIHH", "TILISIIRTO", ref, "viesti")
}

func TestReadNDA(t *testing.T) {
	input := strings.Join([]string{
		header(testIBAN),
		record("140524", "+", 12550, "Lauri Lentaja", "1234"),
		record("140525", "-", 4000, "Polttoaine Oy", "567890"),
		"T70 trailer record",
	}, "\n") + "\n"

	txns, err := ReadNDA(strings.NewReader(input), "statement.nda")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	first := txns[0]
	assert.Equal(t, testIBAN, first.IBAN)
	assert.Equal(t, date.Date(2014, 5, 24), first.PaymentDate)
	assert.Equal(t, int64(12550), first.Cents)
	assert.Equal(t, "Lauri Lentaja", first.Name)
	assert.Equal(t, "1234", first.Ref)
	assert.Equal(t, "FI4950000120378442", first.RecipientIBAN)
	assert.Equal(t, "TILISIIRTO", first.Operation)

	second := txns[1]
	assert.Equal(t, int64(-4000), second.Cents)
	assert.Equal(t, "567890", second.Ref)
}

func TestReadNDAErrors(t *testing.T) {
	t.Run("short transaction record", func(t *testing.T) {
		input := header(testIBAN) + "\nT10140524\n"
		_, err := ReadNDA(strings.NewReader(input), "statement.nda")
		require.Error(t, err)
		var rerr RowError
		assert.ErrorAs(t, err, &rerr)
		assert.Equal(t, 2, rerr.Row)
	})

	t.Run("bad date", func(t *testing.T) {
		input := header(testIBAN) + "\n" + record("149940", "+", 100, "x", "1234") + "\n"
		_, err := ReadNDA(strings.NewReader(input), "statement.nda")
		require.Error(t, err)
	})
}

func TestLiftTransactions(t *testing.T) {
	parse := func(input string) []Transaction {
		txns, err := ReadNDA(strings.NewReader(input), "statement.nda")
		require.NoError(t, err)
		return txns
	}
	txns := parse(strings.Join([]string{
		header(testIBAN),
		record("140524", "+", 12550, "Lauri Lentaja", "1234"),   // lifted
		record("140525", "-", 4000, "Polttoaine Oy", "567890"),  // outgoing
		record("140526", "+", 2000, "Jaana Jasen", "12345"),     // bad ref length
		record("141224", "+", 5000, "Matti Myohainen", "5678"),  // outside period
		header("FI0000000000000000"),
		record("140527", "+", 9900, "Ville Vieras", "1234"), // foreign account
	}, "\n"))

	period := date.NewPeriod(date.Date(2014, 1, 1), date.Date(2014, 6, 30))
	events := LiftTransactions(txns, []string{testIBAN}, &period)

	require.Len(t, events, 1)
	ev := events[0].(*billing.SimpleEvent)
	assert.Equal(t, "1234", ev.AccountID)
	assert.Equal(t, date.Date(2014, 5, 24), ev.Date)
	assert.Equal(t, "Pankkisiirto, Lauri Lentaja", ev.Item)
	assert.True(t, ev.Amount.Equal(decimal.RequireFromString("-125.5")), "amount %s", ev.Amount)
}

func TestLiftTransactionsWithoutPeriod(t *testing.T) {
	txns := []Transaction{{
		IBAN:        testIBAN,
		PaymentDate: date.Date(2014, 12, 24),
		Cents:       5000,
		Name:        "Matti Myohainen",
		Ref:         "5678",
	}}

	events := LiftTransactions(txns, []string{testIBAN}, nil)

	require.Len(t, events, 1)
	assert.True(t, events[0].(*billing.SimpleEvent).Amount.Equal(decimal.NewFromInt(-50)))
}
