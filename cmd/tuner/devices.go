package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-tuner/capture/portaudio"
)

func printDevices(w io.Writer) error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}
	return writeDevices(w, devices)
}

func writeDevices(w io.Writer, devices []portaudio.Device) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tHOST API\tCHANNELS\tRATE")
	for _, d := range devices {
		mark := ""
		if d.Default {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.0f\n", mark, d.Name, d.HostAPI, d.Channels, d.DefaultSampleRate)
	}
	return tw.Flush()
}
