// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom segment between y1 and y2 at
// x in [0,1], using y0 and y3 as the outer control points. The curve passes
// through y1 at x=0 and y2 at x=1.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	// Horner form of
	// 0.5 * (2y1 + (y2-y0)x + (2y0-5y1+4y2-y3)x² + (3y1-y0-3y2+y3)x³)
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)

	return ((c3*x+c2)*x+c1)*x + y1
}
