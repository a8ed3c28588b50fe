package capture

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

type countReader struct {
	chunks int
	err    error
}

func (r *countReader) ReadChunk(dst []float32) (int, error) {
	if r.chunks == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	r.chunks--
	for i := range dst {
		dst[i] = float32(r.chunks)
	}
	return len(dst), nil
}

func waitDone(t *testing.T, p *Pump) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not finish")
	}
}

func TestPumpDeliversUntilEOF(t *testing.T) {
	p, err := NewPump(&countReader{chunks: 5}, 8000, 16)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var got int
	if err := p.Start(func(s []float32) Action {
		mu.Lock()
		got++
		mu.Unlock()
		if len(s) != 16 {
			t.Errorf("chunk length %d", len(s))
		}
		return Continue
	}); err != nil {
		t.Fatal(err)
	}

	waitDone(t, p)
	if p.Active() {
		t.Fatal("Active() after EOF")
	}
	if got != 5 {
		t.Fatalf("delivered %d chunks, want 5", got)
	}
	if p.Err() != nil {
		t.Fatalf("Err() = %v", p.Err())
	}
	if err := p.Start(func([]float32) Action { return Continue }); !errors.Is(err, ErrStarted) {
		t.Fatalf("second Start err = %v", err)
	}
}

func TestPumpStopAction(t *testing.T) {
	p, err := NewPump(&countReader{chunks: 100}, 8000, 4)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	_ = p.Start(func([]float32) Action {
		calls++
		if calls == 3 {
			return Stop
		}
		return Continue
	})

	waitDone(t, p)
	if calls != 3 {
		t.Fatalf("callback ran %d times after Stop, want 3", calls)
	}
}

func TestPumpReadError(t *testing.T) {
	boom := errors.New("boom")
	p, err := NewPump(&countReader{chunks: 1, err: boom}, 8000, 4)
	if err != nil {
		t.Fatal(err)
	}

	_ = p.Start(func([]float32) Action { return Continue })
	waitDone(t, p)

	if !errors.Is(p.Err(), boom) {
		t.Fatalf("Err() = %v, want boom", p.Err())
	}
}

func TestPumpRealtimeStop(t *testing.T) {
	// 1 s per chunk; Stop must not wait for the ticker.
	p, err := NewPump(&countReader{chunks: 10}, 4, 4, WithRealtime(true))
	if err != nil {
		t.Fatal(err)
	}
	_ = p.Start(func([]float32) Action { return Continue })

	if !p.Active() {
		t.Fatal("Active() = false right after Start")
	}

	start := time.Now()
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Stop waited for the pacing ticker")
	}
	if p.Active() {
		t.Fatal("Active() after Stop")
	}
}

func TestNewPumpValidation(t *testing.T) {
	if _, err := NewPump(nil, 8000, 4); err == nil {
		t.Fatal("nil reader accepted")
	}
	if _, err := NewPump(&countReader{}, 0, 4); err == nil {
		t.Fatal("zero rate accepted")
	}
	if _, err := NewPump(&countReader{}, 8000, 0); err == nil {
		t.Fatal("zero frame size accepted")
	}
}
