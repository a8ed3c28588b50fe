// Package core holds the sample buffer and level helpers shared by the
// capture and analysis packages.
package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	clear(buf)
}

// Widen converts float32 capture samples into dst and returns the number of
// converted elements.
func Widen(dst []float64, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
	return n
}
