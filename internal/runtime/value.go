package runtime

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// shorthandPattern is digits, one unit letter, digits (BS 1852 / IEC 60062).
var shorthandPattern = regexp.MustCompile(`(?i)^([0-9]*)([RKMUNP])([0-9]*)$`)

// unitPrefixes maps an upper-cased unit letter to its SI prefix.
var unitPrefixes = map[byte]string{
	'R': "",
	'K': "k",
	'M': "M",
	'U': "µ",
	'N': "n",
	'P': "p",
}

// FormatValue renders component-value shorthand such as "4K7" or "R010"
// into a magnitude with an SI prefix ("4.7k", "10m"). Three leading digits
// with no trailing digits are read as EIA mantissa+exponent ("102U" is
// "1000µ") unless they start or end with '0', which are read literally
// ("100U" is "100µ"). Anything it cannot interpret is returned unchanged.
func FormatValue(code string) string {
	m := shorthandPattern.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	left, unit, right := m[1], strings.ToUpper(m[2])[0], m[3]
	if left == "" && right == "" {
		return code
	}
	prefix := unitPrefixes[unit]

	if right == "" && len(left) == 3 {
		return formatMagnitude(eiaValue(left)) + prefix
	}

	composite := left
	if right != "" {
		composite = left + "." + right
	}
	if composite == "" {
		composite = "0"
	}
	v, err := strconv.ParseFloat(composite, 64)
	if err != nil {
		return code
	}

	if unit == 'R' && v > 0 && v < 1 {
		return formatMagnitude(v*1000) + "m"
	}
	return formatMagnitude(v) + prefix
}

// eiaValue interprets a three digit run. Runs that start or end with '0'
// are direct reads; the rest are two digit mantissa times ten to the third.
func eiaValue(digits string) float64 {
	direct, _ := strconv.ParseFloat(digits, 64)
	if digits[0] == '0' || digits[2] == '0' {
		return direct
	}
	mantissa, err := strconv.Atoi(digits[:2])
	if err != nil {
		return direct
	}
	exponent := int(digits[2] - '0')
	return float64(mantissa) * math.Pow10(exponent)
}

// formatMagnitude drops insignificant zeros: 4.70 renders as "4.7".
func formatMagnitude(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
