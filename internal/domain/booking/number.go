package booking

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidNumber = errors.New("booking: malformed booking number")

// Number is the human-readable reference BK<yyyymmdd><4-digit-seq>. It is
// the correlation key shared with payment gateways; the internal id never
// leaves the system.
type Number string

const numberPrefix = "BK"

// FormatNumber renders the reference for the given day and daily sequence.
func FormatNumber(day time.Time, seq int) Number {
	return Number(fmt.Sprintf("%s%s%04d", numberPrefix, day.UTC().Format("20060102"), seq))
}

func (n Number) Validate() error {
	s := string(n)
	if len(s) != len(numberPrefix)+8+4 || s[:len(numberPrefix)] != numberPrefix {
		return ErrInvalidNumber
	}
	if _, err := time.Parse("20060102", s[2:10]); err != nil {
		return ErrInvalidNumber
	}
	for _, r := range s[10:] {
		if r < '0' || r > '9' {
			return ErrInvalidNumber
		}
	}
	return nil
}
