package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecimals(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"USD", 2},
		{"INR", 2},
		{"JPY", 0},
		{"KRW", 0},
		{"MGA", 1},
		{"BHD", 3},
		{"KWD", 3},
		{"ZZZ", 2}, // unknown codes default to two decimals
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, Decimals(tt.code), "Decimals(%s)", tt.code)
	}
}

func TestLookup(t *testing.T) {
	usd, ok := Lookup("USD")
	assert.True(t, ok)
	assert.Equal(t, "$", usd.Symbol)
	assert.Equal(t, 2, usd.Decimals)

	_, ok = Lookup("ZZZ")
	assert.False(t, ok)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("EUR"))
	assert.False(t, IsValid("eur"), "codes are upper-case ISO 4217")
	assert.False(t, IsValid(""))
}
