// Package pitch estimates the fundamental frequency of a mono frame from
// its autocorrelation.
//
// [SelectPeak] is the core rule: skip past the first negative autocorrelation
// value, then take the highest remaining peak. Its lag is one period, so the
// frequency is sampleRate / lag. When no such peak exists the result carries
// a [Reason] instead of a frequency; an undetectable pitch is data, not an
// error.
//
// [Detector] wraps the rule with reusable buffers and optional
// pre-processing (windowing, silence gating, range limits, parabolic lag
// refinement). With no options it returns exactly what SelectPeak returns.
package pitch
