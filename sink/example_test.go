package sink_test

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-tuner/dsp/pitch"
	"github.com/cwbudde/algo-tuner/music/note"
	"github.com/cwbudde/algo-tuner/sink"
	"github.com/cwbudde/algo-tuner/tuner"
)

func ExampleConsole() {
	c := sink.NewConsole(os.Stdout, sink.WithColor(false))

	l, _ := note.FromFrequency(330)
	_ = c.Emit(tuner.Result{
		Estimate: pitch.Estimate{Frequency: 330, Reason: pitch.ReasonNone},
		Label:    l,
	})
	_ = c.Emit(tuner.Result{Estimate: pitch.Estimate{Reason: pitch.ReasonSilent}})
	// Output:
	// E 4   330.00 Hz   +2 cents
	// -
}

func ExampleMulti() {
	out := sink.Multi{
		sink.NewWriter(os.Stdout),
		tuner.SinkFunc(func(r tuner.Result) error {
			fmt.Println("held", r.Label.Compact())
			return nil
		}),
	}

	l, _ := note.FromFrequency(440)
	_ = out.Emit(tuner.Result{
		Estimate: pitch.Estimate{Frequency: 440, Reason: pitch.ReasonNone},
		Label:    l,
	})
	// Output:
	// A 4
	// held A4
}
