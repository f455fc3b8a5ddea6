package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice-conf.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"event_files": ["events.csv"],
		"flight_files": ["flights/2014.csv"],
		"invoice_date": "2014-11-01",
		"out_dir": "out",
		"description": "PIK lentolasku",
		"no_invoicing_prefix": ["OPER"],
		"row_csv_name_template": "rows_%s.csv"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, []string{filepath.Join(dir, "events.csv")}, cfg.EventFiles)
	assert.Equal(t, []string{filepath.Join(dir, "flights/2014.csv")}, cfg.FlightFiles)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutDir)
	assert.Equal(t, "PIK lentolasku", cfg.Description)
	assert.Equal(t, 2014, cfg.ParsedInvoiceDate().Year())
}

func TestLoadErrors(t *testing.T) {
	var tests = []struct {
		desc    string
		content string
	}{
		{desc: "missing invoice date", content: `{"out_dir": "out"}`},
		{desc: "invalid invoice date", content: `{"invoice_date": "soon", "out_dir": "out"}`},
		{desc: "missing out dir", content: `{"invoice_date": "2014-11-01"}`},
		{desc: "bad row template", content: `{"invoice_date": "2014-11-01", "out_dir": "out", "row_csv_name_template": "rows.csv"}`},
		{desc: "lowercase prefix", content: `{"invoice_date": "2014-11-01", "out_dir": "out", "no_invoicing_prefix": ["oper"]}`},
		{desc: "malformed json", content: `{`},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			require.Error(t, err)
			var cerr Error
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestCheckOutDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"invoice_date": "2014-11-01", "out_dir": "out"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.CheckOutDir())

	require.NoError(t, os.Mkdir(cfg.OutDir, 0o755))
	assert.Error(t, cfg.CheckOutDir())
}

func TestOutputPaths(t *testing.T) {
	path := writeConfig(t, `{
		"invoice_date": "2014-11-01",
		"out_dir": "out",
		"row_csv_name_template": "rows_%s.csv"
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "out", "totals.csv"), cfg.TotalCSVPath())
	assert.Equal(t, filepath.Join(dir, "rows_2014.csv"), cfg.RowCSVPath(2014))

	cfg.RowCSVNameTemplate = ""
	assert.Equal(t, filepath.Join(dir, "out", "rows_2015.csv"), cfg.RowCSVPath(2015))
}
