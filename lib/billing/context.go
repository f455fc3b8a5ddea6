package billing

import (
	"encoding/json"
	"fmt"

	"github.com/jtuo/pik-laskutin/lib/date"
	"github.com/shopspring/decimal"

	"time"
)

// Context holds per-account billing state, keyed by account id and
// variable id. A variable is either a decimal accumulator or a calendar
// date. The context is mutated only by rules during a single engine pass
// and round-trips through JSON between runs.
type Context struct {
	accounts map[string]map[string]value
}

type value struct {
	amount decimal.Decimal
	date   time.Time
	isDate bool
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{accounts: make(map[string]map[string]value)}
}

// Accumulated returns the accumulator for the given account and variable,
// zero if it has never been written.
func (c *Context) Accumulated(account, variable string) decimal.Decimal {
	return c.accounts[account][variable].amount
}

// SetAccumulated writes the accumulator for the given account and variable.
func (c *Context) SetAccumulated(account, variable string, v decimal.Decimal) {
	c.set(account, variable, value{amount: v})
}

// Date returns the date stored for the given account and variable.
func (c *Context) Date(account, variable string) (time.Time, bool) {
	v, ok := c.accounts[account][variable]
	if !ok || !v.isDate {
		return time.Time{}, false
	}
	return v.date, true
}

// SetDate writes a date for the given account and variable.
func (c *Context) SetDate(account, variable string, d time.Time) {
	c.set(account, variable, value{date: d, isDate: true})
}

func (c *Context) set(account, variable string, v value) {
	vars, ok := c.accounts[account]
	if !ok {
		vars = make(map[string]value)
		c.accounts[account] = vars
	}
	vars[variable] = v
}

// Snapshot deeply copies the context.
func (c *Context) Snapshot() *Context {
	nc := NewContext()
	for account, vars := range c.accounts {
		for variable, v := range vars {
			nc.set(account, variable, v)
		}
	}
	return nc
}

// MarshalJSON renders the context as {account: {variable: value}}, with
// accumulators as numbers and dates as ISO 8601 strings.
func (c *Context) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]json.RawMessage, len(c.accounts))
	for account, vars := range c.accounts {
		m := make(map[string]json.RawMessage, len(vars))
		for variable, v := range vars {
			if v.isDate {
				m[variable] = json.RawMessage(fmt.Sprintf("%q", v.date.Format("2006-01-02")))
			} else {
				m[variable] = json.RawMessage(v.amount.String())
			}
		}
		out[account] = m
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the same shape, with values as numbers, decimal
// strings or ISO dates.
func (c *Context) UnmarshalJSON(data []byte) error {
	var in map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.accounts = make(map[string]map[string]value, len(in))
	for account, vars := range in {
		for variable, raw := range vars {
			v, err := parseValue(raw)
			if err != nil {
				return fmt.Errorf("context value %s/%s: %w", account, variable, err)
			}
			c.set(account, variable, v)
		}
	}
	return nil
}

func parseValue(raw json.RawMessage) (value, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return value{}, err
		}
		if d, err := date.Parse(s); err == nil {
			return value{date: d, isDate: true}, nil
		}
		a, err := decimal.NewFromString(s)
		if err != nil {
			return value{}, fmt.Errorf("neither a date nor a decimal: %q", s)
		}
		return value{amount: a}, nil
	}
	a, err := decimal.NewFromString(string(raw))
	if err != nil {
		return value{}, err
	}
	return value{amount: a}, nil
}
