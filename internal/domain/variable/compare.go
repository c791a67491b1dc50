package variable

import "math"

// maxExactLong is 2^63 as a float64. Doubles at or beyond this magnitude lie
// outside the long range; a long-typed variable that overflowed during
// storage must never spuriously match such a double.
const maxExactLong = float64(1 << 63)

// isExactInt reports whether f is a whole number inside the int64 range.
func isExactInt(f float64) bool {
	return f == math.Trunc(f) && f > -maxExactLong && f < maxExactLong && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// numbersEqual implements cross-type numeric equality: a double with a
// fractional part never equals an integer-stored value, and a double outside
// the long range never equals any integer-stored value.
func numbersEqual(a, b Value) bool {
	ai, bi := a.integral(), b.integral()
	switch {
	case ai && bi:
		return intOf(a) == intOf(b)
	case !ai && !bi:
		return a.asDouble() == b.asDouble()
	default:
		d, i := a, b
		if ai {
			d, i = b, a
		}
		if !isExactInt(d.asDouble()) {
			return false
		}
		return int64(d.asDouble()) == intOf(i)
	}
}

// intOf returns the exact integer payload of an integral value.
func intOf(v Value) int64 {
	if v.Type == TypeNumber || v.Type == TypeDouble {
		return int64(v.Double)
	}
	return v.Int
}

// compareNumbers orders two numeric values. Integral pairs compare exactly;
// doubles beyond the long range order strictly outside every integer.
func compareNumbers(a, b Value) int {
	ai, bi := a.integral(), b.integral()
	if ai && bi {
		return cmpInt(intOf(a), intOf(b))
	}
	if !ai && !bi {
		return cmpFloat(a.asDouble(), b.asDouble())
	}
	if ai {
		// integer vs double
		return -compareDoubleToInt(b.asDouble(), intOf(a))
	}
	return compareDoubleToInt(a.asDouble(), intOf(b))
}

// compareDoubleToInt orders a float64 against an exact int64 without losing
// precision for large magnitudes.
func compareDoubleToInt(d float64, i int64) int {
	switch {
	case math.IsNaN(d):
		return -1
	case d >= maxExactLong:
		return 1
	case d < -maxExactLong:
		return -1
	}
	t := math.Trunc(d)
	ti := int64(t)
	if ti != i {
		return cmpInt(ti, i)
	}
	frac := d - t
	switch {
	case frac > 0:
		return 1
	case frac < 0:
		return -1
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
