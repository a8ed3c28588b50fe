package note_test

import (
	"fmt"

	"github.com/cwbudde/algo-tuner/music/note"
)

func ExampleFromFrequency() {
	for _, hz := range []float64{440, 261.63, 277.18} {
		l, err := note.FromFrequency(hz)
		if err != nil {
			panic(err)
		}
		fmt.Printf("[%s] %s %+.0f cents\n", l, l.Compact(), l.Cents)
	}

	// Output:
	// [A 4] A4 +0 cents
	// [C 4] C4 +0 cents
	// [C♯4] C♯4 -0 cents
}
