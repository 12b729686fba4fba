package models

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Price is a currency amount in minor units (cents). It is stored as an
// integer and written to JSON as a decimal number with two fraction digits.
type Price int64

// ParsePrice parses a decimal amount such as "12", "12.5" or "12.50". More
// than two fraction digits are rejected rather than rounded.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("price is empty")
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && frac == "") {
		return 0, errors.Errorf("invalid price %q", s)
	}
	if len(frac) > 2 {
		return 0, errors.Errorf("price %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid price %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid price %q", s)
	}

	p := Price(units*100 + cents)
	if negative {
		p = -p
	}
	return p, nil
}

func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	frac := strconv.FormatInt(v%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(v/100, 10) + "." + frac
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
