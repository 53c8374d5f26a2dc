// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// QuantizeInt16 maps a normalized sample onto full-range signed 16-bit PCM.
//
// The value is clamped to [-1, 1] first. Negative values scale by 32768 and
// positive values by 32767, so -1 lands on math.MinInt16 and 1 on
// math.MaxInt16. The product is rounded half away from zero. NaN maps to 0.
func QuantizeInt16(x float32) int16 {
	v := float64(x)
	if v != v {
		return 0
	}

	v = max(-1, min(1, v))
	if v < 0 {
		return int16(math.Round(v * 32768))
	}

	return int16(math.Round(v * 32767))
}

// NormalizeInt16 is the inverse direction used by the PCM interpreter:
// s / 32768, which keeps every int16 inside [-1, 1).
func NormalizeInt16(s int16) float32 {
	return float32(s) / 32768.0
}

// DequantizeInt16 is the exact inverse of QuantizeInt16: negatives divide by
// 32768 and positives by 32767, so QuantizeInt16(DequantizeInt16(s)) == s.
// Reading back encoded documents uses it; the PCM interpreter does not.
func DequantizeInt16(s int16) float32 {
	if s < 0 {
		return float32(s) / 32768.0
	}

	return float32(s) / 32767.0
}
