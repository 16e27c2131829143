package canny

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Spend is the value of a company's monthlySpend field. A Spend that is not
// Valid is the "not a number" sentinel used when no revenue figure exists;
// it is distinct from a zero spend.
type Spend struct {
	Amount int64
	Valid  bool
}

// NaN is the sentinel spend for companies without an ARR figure.
var NaN = Spend{}

// MaxSpend is the largest whole-dollar amount a float64 holds exactly.
const MaxSpend = 1 << 53

// NewSpend returns a valid spend of the given whole-dollar amount.
func NewSpend(amount int64) Spend {
	return Spend{Amount: amount, Valid: true}
}

// SpendFromARR converts annual recurring revenue to a monthly spend,
// rounding half to even. Results beyond MaxSpend are NaN.
func SpendFromARR(arr float64) Spend {
	return spendFromFloat(arr / 12)
}

func spendFromFloat(f float64) Spend {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > MaxSpend {
		return NaN
	}
	return NewSpend(int64(math.RoundToEven(f)))
}

// IsNaN reports whether s is the sentinel.
func (s Spend) IsNaN() bool { return !s.Valid }

// String renders the spend the way it is sent to Canny: "100" or "NaN".
func (s Spend) String() string {
	if !s.Valid {
		return "NaN"
	}
	return strconv.FormatInt(s.Amount, 10)
}

// MarshalJSON writes the spend as a JSON string.
func (s Spend) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a number, a numeric string, "NaN" or null.
func (s *Spend) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = NaN
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return eris.Wrap(err, "canny: decode monthlySpend")
		}
		raw = strings.TrimSpace(str)
	}
	if raw == "" || strings.EqualFold(raw, "nan") {
		*s = NaN
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return eris.Wrapf(err, "canny: invalid monthlySpend %q", raw)
	}
	*s = spendFromFloat(f)
	return nil
}

// Company is a Canny company record. ID, Name and MonthlySpend are promoted;
// every other field returned by the API is kept in Extra and written back
// unchanged on update.
type Company struct {
	ID           string
	Name         string
	MonthlySpend Spend
	Extra        map[string]json.RawMessage
}

const (
	fieldID           = "id"
	fieldName         = "name"
	fieldMonthlySpend = "monthlySpend"
	fieldAPIKey       = "apiKey"
)

// UnmarshalJSON decodes a company, keeping unknown fields.
func (c *Company) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return eris.Wrap(err, "canny: decode company")
	}

	var out Company
	if raw, ok := fields[fieldID]; ok {
		if err := json.Unmarshal(raw, &out.ID); err != nil {
			return eris.Wrap(err, "canny: decode company id")
		}
		delete(fields, fieldID)
	}
	if raw, ok := fields[fieldName]; ok {
		if err := json.Unmarshal(raw, &out.Name); err != nil {
			return eris.Wrap(err, "canny: decode company name")
		}
		delete(fields, fieldName)
	}
	if raw, ok := fields[fieldMonthlySpend]; ok {
		if err := out.MonthlySpend.UnmarshalJSON(raw); err != nil {
			return err
		}
		delete(fields, fieldMonthlySpend)
	}
	if len(fields) > 0 {
		out.Extra = fields
	}

	*c = out
	return nil
}

// MarshalJSON encodes the company with its pass-through fields.
func (c Company) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.payload(""))
}

// payload flattens the company into a single object, injecting apiKey when
// set. Promoted fields win over any stale copy in Extra.
func (c Company) payload(apiKey string) map[string]any {
	out := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.ID != "" {
		out[fieldID] = c.ID
	}
	out[fieldName] = c.Name
	out[fieldMonthlySpend] = c.MonthlySpend
	if apiKey != "" {
		out[fieldAPIKey] = apiKey
	}
	return out
}

// ListResponse is the body returned by companies/list.
type ListResponse struct {
	Companies []Company `json:"companies"`
	HasMore   bool      `json:"hasMore"`
}
