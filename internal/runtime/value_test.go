package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"Kilo Infix", "4K7", "4.7k"},
		{"Milli From R Prefix", "R010", "10m"},
		{"Micro Leading Zero", "04U7", "4.7µ"},
		{"EIA Exponential", "102U", "1000µ"},
		{"Direct Read Trailing Zero", "100U", "100µ"},
		{"Direct Read Leading Zero", "010R", "10"},
		{"EIA With R", "471R", "470"},
		{"Lower Case Unit", "4k7", "4.7k"},
		{"Lower Case Micro", "2u2", "2.2µ"},
		{"Nano Suffix", "47N", "47n"},
		{"Pico Suffix", "33P", "33p"},
		{"Mega Suffix", "1M", "1M"},
		{"Sub Ohm Infix", "0R5", "500m"},
		{"Sub Ohm Prefix", "R47", "470m"},
		{"Whole Ohm Infix", "1R0", "1"},
		{"Zero Ohm", "0R", "0"},
		{"Large Exponent", "105K", "1e+06k"},
		{"Trailing Zero Dropped", "4K70", "4.7k"},
		{"Unit Only", "R", "R"},
		{"Unrecognized", "ABC", "ABC"},
		{"Two Unit Letters", "4KK7", "4KK7"},
		{"Trailing Garbage", "4K7X", "4K7X"},
		{"Digits Only", "102", "102"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.code))
		})
	}
}

func TestFormatValue_NeverFails(t *testing.T) {
	for _, code := range []string{"電阻", "\x00", "K" + string(rune(0xFFFD)), "999999999999999999999K9"} {
		assert.NotPanics(t, func() { FormatValue(code) }, code)
	}
}
