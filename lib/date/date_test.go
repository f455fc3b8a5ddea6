package date

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	var tests = []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2014-05-24", want: Date(2014, 5, 24)},
		{input: "24.5.2014", want: Date(2014, 5, 24)},
		{input: "01.12.2021", want: Date(2021, 12, 1)},
		{input: " 2014-05-24 ", want: Date(2014, 5, 24)},
		{input: "2014-13-01", wantErr: true},
		{input: "yesterday", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := Parse(test.input)
			if test.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q): expected error, got %s", test.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): unexpected error: %v", test.input, err)
			}
			if !got.Equal(test.want) {
				t.Errorf("Parse(%q) = %s, want %s", test.input, got, test.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	var tests = []struct {
		input        string
		hour, minute int
		wantErr      bool
	}{
		{input: "12:34", hour: 12, minute: 34},
		{input: "12.34", hour: 12, minute: 34},
		{input: "00:00", hour: 0, minute: 0},
		{input: "9:05", hour: 9, minute: 5},
		{input: "25:00", wantErr: true},
		{input: "12:61", wantErr: true},
		{input: "noon", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			h, m, err := ParseClock(test.input)
			if test.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q): expected error, got %d:%d", test.input, h, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q): unexpected error: %v", test.input, err)
			}
			if h != test.hour || m != test.minute {
				t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", test.input, h, m, test.hour, test.minute)
			}
		})
	}
}

func TestPeriodContains(t *testing.T) {
	p := FullYear(2014)
	var tests = []struct {
		date time.Time
		want bool
	}{
		{date: Date(2014, 1, 1), want: true},
		{date: Date(2014, 12, 31), want: true},
		{date: Date(2014, 7, 15), want: true},
		{date: Date(2013, 12, 31), want: false},
		{date: Date(2015, 1, 1), want: false},
	}
	for _, test := range tests {
		if got := p.Contains(test.date); got != test.want {
			t.Errorf("Contains(%s) = %t, want %t", test.date.Format("2006-01-02"), got, test.want)
		}
	}
}

func TestPeriodString(t *testing.T) {
	p := NewPeriod(Date(2014, 5, 1), Date(2014, 9, 30))
	if got, want := p.String(), "01.05.2014 - 30.09.2014"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
