package ecma

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

const two32 = 4294967296.0

// Uint32 applies ToUint32 to a number: truncation toward zero followed by
// reduction modulo 2^32. NaN and infinities map to 0.
func Uint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	r := math.Mod(math.Trunc(f), two32)
	if r < 0 {
		r += two32
	}
	return uint32(r)
}

// Int32 applies ToInt32 to a number: ToUint32 reinterpreted as a signed
// two's complement value.
func Int32(f float64) int32 {
	return int32(Uint32(f))
}

// NumberToString formats f the way Number.prototype.toString(10) does.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f < 0:
		return "-" + NumberToString(-f)
	}

	// Shortest round-tripping digits, as d.ddde+x.
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, _ := strconv.Atoi(exp)
	k := len(digits)
	n := e + 1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}
	exponent := strconv.Itoa(abs(n - 1))
	if k == 1 {
		return digits + "e" + sign + exponent
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + exponent
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// decimalLiteral is the StrDecimalLiteral grammar of ECMA-262.
var decimalLiteral = regexp2.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)$`, regexp2.ECMAScript)

// IsWhiteSpace reports whether r is a WhiteSpace or LineTerminator code
// point.
func IsWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// StringToNumber applies ToNumber to a string value.
func StringToNumber(s string) float64 {
	s = strings.TrimFunc(s, IsWhiteSpace)
	if s == "" {
		return 0
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseInteger(s[2:], base)
		}
	}
	if ok, err := decimalLiteral.MatchString(s); err != nil || !ok {
		return math.NaN()
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func parseInteger(digits string, base int) float64 {
	for _, c := range digits {
		if !isDigit(c, base) {
			return math.NaN()
		}
	}
	i, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(i).Float64()
	return f
}

func isDigit(c rune, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return int(c-'0') < base
	case c >= 'a' && c <= 'f':
		return base == 16
	case c >= 'A' && c <= 'F':
		return base == 16
	}
	return false
}
