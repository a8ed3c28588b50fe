package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-tuner/dsp/conv"
)

func ExampleAutoCorrelate() {
	// A period-4 square wave correlates best with itself shifted by 4.
	signal := []float64{1, 1, -1, -1, 1, 1, -1, -1, 1, 1, -1, -1}

	acf, err := conv.AutoCorrelate(signal)
	if err != nil {
		panic(err)
	}

	fmt.Println(acf[:6])

	// Output:
	// [12 1 -10 -1 8 1]
}

func ExampleFFTAutoCorrelator() {
	c, err := conv.NewFFTAutoCorrelator(4)
	if err != nil {
		panic(err)
	}

	acf, err := c.Process([]float64{1, 2, 3, 4})
	if err != nil {
		panic(err)
	}

	for _, v := range acf {
		fmt.Printf("%.1f ", v)
	}
	fmt.Println()

	// Output:
	// 30.0 20.0 11.0 4.0
}
