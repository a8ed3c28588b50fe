// Package conv provides one-sided autocorrelation for periodicity analysis.
//
// Two strategies compute the same unnormalized sequence
//
//	r[k] = sum_{i=0}^{N-1-k} x[i] * x[i+k],  k = 0..N-1
//
//   - Direct: one dot product per lag, O(N^2). Exact and allocation-free;
//     the natural choice for short frames (a few hundred samples).
//   - FFT: zero-pads to at least 2N, takes |X|^2 and transforms back
//     (Wiener-Khinchin). O(N log N), with rounding error around 1e-12 of r[0].
//
// # Usage
//
//	acf, err := conv.AutoCorrelate(frame)
//
// For repeated frames of one length, reuse a correlator and a destination
// buffer:
//
//	c, err := conv.NewFFTAutoCorrelator(len(frame))
//	err = c.ProcessTo(acf, frame)
package conv
