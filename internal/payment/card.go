// Package payment validates payment-card fields at order placement. Only the
// masked number and normalized expiry ever leave this package; the raw card
// number is never persisted.
package payment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidNumber = errors.New("Invalid credit card number")
	ErrInvalidExpiry = errors.New("Invalid credit card expiry date")
	ErrCardExpired   = errors.New("Credit card is expired")
)

// Card is the validated, storable form of the payment fields.
type Card struct {
	MaskedNumber     string
	NormalizedExpiry string // MM/YY
}

type Expiry struct {
	Month      int
	Year       int
	Normalized string
}

var expiryRe = regexp.MustCompile(`^\s*(\d{2})\s*[-/]\s*(\d{2}|\d{4})\s*$`)

// NormalizeNumber strips every non-digit character.
func NormalizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidLuhn reports whether digits is an all-digit string of typical PAN
// length (12-19) passing the Luhn checksum.
func IsValidLuhn(digits string) bool {
	if len(digits) < 12 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ParseExpiry accepts MM/YY, MM/YYYY, MM-YY and MM-YYYY. Two-digit years map
// to 2000+YY; the resulting year must stay in [2000,2099].
func ParseExpiry(raw string) (Expiry, bool) {
	m := expiryRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Expiry{}, false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Expiry{}, false
	}
	if len(m[2]) == 2 {
		year += 2000
	}
	if year < 2000 || year > 2099 {
		return Expiry{}, false
	}
	return Expiry{
		Month:      month,
		Year:       year,
		Normalized: fmt.Sprintf("%02d/%02d", month, year%100),
	}, true
}

// MaskNumber keeps only the last four digits for display and storage.
func MaskNumber(raw string) string {
	digits := NormalizeNumber(raw)
	if len(digits) < 4 {
		return "****"
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// ValidateCard checks the number and expiry against the given instant.
// A card expiring in the current month is still accepted.
func ValidateCard(number, expiry string, now time.Time) (Card, error) {
	digits := NormalizeNumber(number)
	if !IsValidLuhn(digits) {
		return Card{}, ErrInvalidNumber
	}
	exp, ok := ParseExpiry(expiry)
	if !ok {
		return Card{}, ErrInvalidExpiry
	}
	if exp.Year < now.Year() || (exp.Year == now.Year() && exp.Month < int(now.Month())) {
		return Card{}, ErrCardExpired
	}
	return Card{
		MaskedNumber:     MaskNumber(digits),
		NormalizedExpiry: exp.Normalized,
	}, nil
}
