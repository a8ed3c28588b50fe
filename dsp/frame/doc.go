// Package frame moves fixed-size audio frames from a time-critical capture
// callback to a single analysis consumer.
//
// A [Queue] is a bounded single-producer/single-consumer ring. The producer
// side ([Queue.Send]) never blocks and never allocates; when the ring is full
// the newest frame is rejected with [ErrFull] and counted as dropped, and the
// configured [OverflowPolicy] tells the producer whether to keep capturing or
// to ask its source to stop. The consumer side polls with [Queue.TryReceive]
// or parks in [Queue.Wait] until the producer signals new data.
//
// Ownership moves with the frame: the producer must not touch a frame after a
// successful Send, and the consumer owns it exclusively after TryReceive
// until it hands the frame back to a [Pool].
package frame
