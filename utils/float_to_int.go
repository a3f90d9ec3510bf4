// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a [-1,1] sample to 16-bit PCM. Out of range input
// is clipped and NaN becomes silence.
func Float32ToInt16(x float32) int16 {
	switch {
	case x != x:
		return 0
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}

	// 32767 for both signs keeps the scale symmetric
	return int16(x * 32767.0)
}
