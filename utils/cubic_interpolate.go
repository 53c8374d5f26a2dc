// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom segment between y1 and y2 at
// t in [0, 1]. y0 and y3 are the neighbouring samples that shape the tangents.
func CubicInterpolate(y0, y1, y2, y3, t float32) float32 {
	m1 := (y2 - y0) / 2
	m2 := (y3 - y1) / 2
	d := y2 - y1

	c3 := m1 + m2 - 2*d
	c2 := 3*d - 2*m1 - m2

	return ((c3*t+c2)*t+m1)*t + y1
}
