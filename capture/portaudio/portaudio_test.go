package portaudio

import (
	"errors"
	"testing"

	pa "github.com/gordonklaus/portaudio"
)

func testDevices() ([]*pa.DeviceInfo, *pa.DeviceInfo) {
	host := &pa.HostApiInfo{Name: "ALSA"}
	devs := []*pa.DeviceInfo{
		{Name: "HDA Intel PCH: ALC3246 Analog", MaxInputChannels: 2, DefaultSampleRate: 48000, HostApi: host},
		{Name: "HDMI 0", MaxInputChannels: 0, MaxOutputChannels: 8, DefaultSampleRate: 48000, HostApi: host},
		{Name: "USB Audio CODEC", MaxInputChannels: 1, DefaultSampleRate: 44100, HostApi: host},
		{Name: "USB Audio Interface", MaxInputChannels: 2, DefaultSampleRate: 96000, HostApi: host},
	}
	return devs, devs[0]
}

func TestSelectDevice(t *testing.T) {
	devs, def := testDevices()

	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{name: "", want: "HDA Intel PCH: ALC3246 Analog"},
		{name: "usb audio codec", want: "USB Audio CODEC"},
		{name: "hda", want: "HDA Intel PCH: ALC3246 Analog"},
		{name: "HDMI 0", wantErr: ErrNoDevice},
		{name: "missing", wantErr: ErrNoDevice},
	}

	for _, tt := range tests {
		got, err := selectDevice(devs, def, tt.name)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("selectDevice(%q) err = %v, want %v", tt.name, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("selectDevice(%q): %v", tt.name, err)
		}
		if got.Name != tt.want {
			t.Fatalf("selectDevice(%q) = %q, want %q", tt.name, got.Name, tt.want)
		}
	}

	if _, err := selectDevice(devs, def, "usb audio"); err == nil || errors.Is(err, ErrNoDevice) {
		t.Fatalf("ambiguous prefix err = %v", err)
	}
	if _, err := selectDevice(devs, nil, ""); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("no default device err = %v", err)
	}
}

func TestInputDevices(t *testing.T) {
	devs, def := testDevices()

	got := inputDevices(devs, def)
	if len(got) != 3 {
		t.Fatalf("got %d input devices, want 3", len(got))
	}
	if !got[0].Default || got[1].Default {
		t.Fatal("default flag misplaced")
	}
	if got[1].Name != "USB Audio CODEC" || got[1].HostAPI != "ALSA" || got[1].Channels != 1 {
		t.Fatalf("device = %+v", got[1])
	}
}
