// Package core holds the ledger domain types and money handling.
//
// Amounts are whole Vietnamese đồng: VND has no fractional unit in practice,
// so Money carries an int64 đồng value rather than a scaled decimal.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Money is a non-negative VND amount on validated records. It marshals as a
// bare JSON number so API payloads match the original client's shape.
type Money struct {
	VND int64
}

func (m Money) Validate() error {
	if m.VND < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.VND, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return ErrInvalidAmount
	}
	m.VND = v
	return nil
}

// ParseVND converts user input to a đồng amount. Thousand separators (dots,
// commas, spaces) and a trailing currency marker are tolerated:
//
//	ParseVND("15000000")    -> 15000000
//	ParseVND("15.000.000")  -> 15000000
//	ParseVND("15,000,000đ") -> 15000000
//
// Negative and empty inputs are rejected.
func ParseVND(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "đ")
	s = strings.TrimSuffix(s, "₫")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == ',' || r == ' ':
			// separator, skip
		default:
			return 0, ErrInvalidAmount
		}
	}
	if b.Len() == 0 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatVND renders an amount with dot thousand separators for display and
// export ("15000000" -> "15.000.000").
func FormatVND(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		return "-" + out
	}
	return out
}
