// Package tuner runs the analysis loop of a pitch tracker.
//
// A [Loop] consumes frames from a [frame.Queue], estimates the pitch of each
// with a [pitch.Detector], names it with a [note.Mapper] and hands the
// [Result] to a [Sink]. The loop owns one frame at a time. It stops once the
// capture source reports it is inactive, the queue is closed or the context
// ends, and it always analyses frames that were already queued before
// stopping.
package tuner
