package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"125,30-", "-125.3"},
		{"1.254.125,33-", "-1254125.33"},
		{"1.254.125.33-", "-1254125.33"},
		{"1,254,125,33-", "-1254125.33"},
		{"125.33", "125.33"},
		{"125,5400", "125.54"},
		{"1,000", "1"},
		{"0,00", "0"},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		want, _ := decimal.NewFromString(tc.want)
		assert.True(t, want.Equal(got), "ParseAmount(%q) = %s, want %s", tc.in, got, want)
	}
}

func TestParseAmountInvalid(t *testing.T) {
	_, err := ParseAmount("abc")
	require.Error(t, err)

	v, ok, err := ParseAmountMode("abc", ModeIgnore)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, v.IsZero())
}

func TestRoundTripLaw(t *testing.T) {
	// parse_number(format_number(x)) == x for representable decimals with
	// up to 4 fractional digits, any sign, thousand-separator style '.'.
	values := []string{"125.30", "-1254125.3300", "0.00", "999.9999", "1000000.01"}
	for _, v := range values {
		d, err := decimal.NewFromString(v)
		require.NoError(t, err)

		formatted := FormatAmount(d, ".", ",")
		parsed, err := ParseAmount(formatted)
		require.NoError(t, err, formatted)

		assert.True(t, d.Equal(parsed), "round-trip failed: %s -> %s -> %s", v, formatted, parsed)
	}
}

func TestFormatGerman(t *testing.T) {
	d := decimal.RequireFromString("1500")
	assert.Equal(t, "1.500,00", FormatGerman(d))

	neg := decimal.RequireFromString("-123.4")
	assert.Equal(t, "-123,40", FormatGerman(neg))
}
