package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidLuhn(t *testing.T) {
	valid := []string{
		"4242424242424242",
		"4111111111111111",
		"5500005555555559",
		"378282246310005",    // 15 digits
		"6011000990139424",   // discover
		"4222222222222",      // 13 digits
		"6011111111111117",
	}
	for _, n := range valid {
		assert.True(t, IsValidLuhn(n), "expected valid: %s", n)
	}

	invalid := []string{
		"",
		"4242424242424241",  // single-digit mutation
		"1234567890123456",
		"42424242424",       // 11 digits, too short
		"42424242424242424242", // 20 digits, too long
		"4242 4242 4242 4242", // non-digit
		"abcd424242424242",
	}
	for _, n := range invalid {
		assert.False(t, IsValidLuhn(n), "expected invalid: %s", n)
	}
}

func TestIsValidLuhn_SingleDigitMutations(t *testing.T) {
	base := "4242424242424242"
	for i := 0; i < len(base); i++ {
		mutated := []byte(base)
		mutated[i] = '0' + (mutated[i]-'0'+1)%10
		assert.False(t, IsValidLuhn(string(mutated)), "mutation at %d should break checksum", i)
	}
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in         string
		ok         bool
		month      int
		year       int
		normalized string
	}{
		{"03/25", true, 3, 2025, "03/25"},
		{"03/2025", true, 3, 2025, "03/25"},
		{"03-25", true, 3, 2025, "03/25"},
		{"03-2025", true, 3, 2025, "03/25"},
		{" 12 / 30 ", true, 12, 2030, "12/30"},
		{"01/99", true, 1, 2099, "01/99"}, // upper year boundary
		{"01/00", true, 1, 2000, "01/00"}, // lower year boundary
		{"13/25", false, 0, 0, ""},
		{"00/25", false, 0, 0, ""},
		{"1/25", false, 0, 0, ""}, // single-digit month not accepted
		{"03/1999", false, 0, 0, ""},
		{"03/2100", false, 0, 0, ""},
		{"0325", false, 0, 0, ""},
		{"", false, 0, 0, ""},
	}
	for _, tc := range tests {
		exp, ok := ParseExpiry(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.month, exp.Month, "input %q", tc.in)
			assert.Equal(t, tc.year, exp.Year, "input %q", tc.in)
			assert.Equal(t, tc.normalized, exp.Normalized, "input %q", tc.in)
		}
	}
}

func TestMaskNumber(t *testing.T) {
	assert.Equal(t, "**** **** **** 4242", MaskNumber("4242424242424242"))
	assert.Equal(t, "**** **** **** 4242", MaskNumber("4242-4242-4242-4242"))
	assert.Equal(t, "****", MaskNumber("42"))
}

func TestValidateCard(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	card, err := ValidateCard("4242 4242 4242 4242", "03/26", now)
	require.NoError(t, err)
	assert.Equal(t, "**** **** **** 4242", card.MaskedNumber)
	assert.Equal(t, "03/26", card.NormalizedExpiry)

	// Current month is still accepted.
	_, err = ValidateCard("4242424242424242", "06/25", now)
	assert.NoError(t, err)

	_, err = ValidateCard("4242424242424242", "05/25", now)
	assert.ErrorIs(t, err, ErrCardExpired)

	_, err = ValidateCard("4242424242424241", "03/26", now)
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ValidateCard("4242424242424242", "3/26", now)
	assert.ErrorIs(t, err, ErrInvalidExpiry)
}
