package frame

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestQueue(t *testing.T, capacity int, opts ...QueueOption) *Queue {
	t.Helper()
	q, err := NewQueue(capacity, opts...)
	if err != nil {
		t.Fatalf("NewQueue(%d): %v", capacity, err)
	}
	return q
}

func TestNewQueueCapacity(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 1, want: 1},
		{in: 2, want: 2},
		{in: 3, want: 4},
		{in: 64, want: 64},
		{in: 100, want: 128},
	}

	for _, tt := range tests {
		q := newTestQueue(t, tt.in)
		if q.Cap() != tt.want {
			t.Fatalf("NewQueue(%d).Cap() = %d, want %d", tt.in, q.Cap(), tt.want)
		}
	}

	if _, err := NewQueue(0); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("NewQueue(0) err = %v, want ErrInvalidCapacity", err)
	}
}

func TestQueueFIFO(t *testing.T) {
	q := newTestQueue(t, 8)

	sent := make([]*Frame, 5)
	for i := range sent {
		sent[i] = &Frame{Seq: uint64(i + 1)}
		if err := q.Send(sent[i]); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}

	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}

	for i := range sent {
		f, ok := q.TryReceive()
		if !ok {
			t.Fatalf("TryReceive(%d): empty", i)
		}
		if f != sent[i] {
			t.Fatalf("frame %d: got seq %d, want seq %d", i, f.Seq, sent[i].Seq)
		}
	}

	if _, ok := q.TryReceive(); ok {
		t.Fatal("TryReceive on drained queue returned a frame")
	}

	st := q.Stats()
	if st.Sent != 5 || st.Received != 5 || st.Dropped != 0 {
		t.Fatalf("Stats() = %+v", st)
	}
}

func TestQueueEmptyDoesNotBlock(t *testing.T) {
	q := newTestQueue(t, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if f, ok := q.TryReceive(); ok || f != nil {
			t.Errorf("TryReceive() = %v, %v; want nil, false", f, ok)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TryReceive blocked on an empty queue")
	}
}

func TestQueueFullDropsNewest(t *testing.T) {
	q := newTestQueue(t, 2, WithOverflowPolicy(OverflowDropNewest))

	a, b, c := &Frame{Seq: 1}, &Frame{Seq: 2}, &Frame{Seq: 3}
	if err := q.Send(a); err != nil {
		t.Fatal(err)
	}
	if err := q.Send(b); err != nil {
		t.Fatal(err)
	}
	if err := q.Send(c); !errors.Is(err, ErrFull) {
		t.Fatalf("Send on full queue err = %v, want ErrFull", err)
	}

	if q.Policy() != OverflowDropNewest {
		t.Fatalf("Policy() = %v", q.Policy())
	}
	if q.Stats().Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", q.Stats().Dropped)
	}

	f, _ := q.TryReceive()
	if f != a {
		t.Fatalf("oldest frame lost: got seq %d", f.Seq)
	}
	if err := q.Send(c); err != nil {
		t.Fatalf("Send after freeing a slot: %v", err)
	}
}

func TestQueueClose(t *testing.T) {
	q := newTestQueue(t, 4)

	if err := q.Send(&Frame{Seq: 1}); err != nil {
		t.Fatal(err)
	}
	q.Close()
	q.Close()

	if !q.Closed() {
		t.Fatal("Closed() = false after Close")
	}
	if err := q.Send(&Frame{Seq: 2}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send after Close err = %v, want ErrClosed", err)
	}

	// Queued frames survive Close.
	if err := q.Wait(context.Background()); err != nil {
		t.Fatalf("Wait with queued frame: %v", err)
	}
	if f, ok := q.TryReceive(); !ok || f.Seq != 1 {
		t.Fatalf("TryReceive after Close = %v, %v", f, ok)
	}
	if err := q.Wait(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Wait on closed empty queue err = %v, want ErrClosed", err)
	}
}

func TestQueueWaitWakesOnSend(t *testing.T) {
	q := newTestQueue(t, 4)

	errc := make(chan error, 1)
	go func() {
		errc <- q.Wait(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	if err := q.Send(&Frame{Seq: 1}); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake after Send")
	}
}

func TestQueueWaitCancel(t *testing.T) {
	q := newTestQueue(t, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := q.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait err = %v, want DeadlineExceeded", err)
	}
}

func TestQueueConcurrentOrder(t *testing.T) {
	const total = 10000
	q := newTestQueue(t, 16, WithOverflowPolicy(OverflowDropNewest))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for seq := uint64(1); seq <= total; {
			if err := q.Send(&Frame{Seq: seq}); err == nil {
				seq++
			}
		}
		q.Close()
	}()

	var want uint64 = 1
	for {
		f, ok := q.TryReceive()
		if !ok {
			if err := q.Wait(context.Background()); errors.Is(err, ErrClosed) {
				break
			}
			continue
		}
		if f.Seq != want {
			t.Fatalf("received seq %d, want %d", f.Seq, want)
		}
		want++
	}
	wg.Wait()

	if want != total+1 {
		t.Fatalf("received %d frames, want %d", want-1, total)
	}
}

func TestOverflowPolicyString(t *testing.T) {
	if OverflowStop.String() != "stop" || OverflowDropNewest.String() != "drop-newest" {
		t.Fatal("unexpected policy names")
	}
	if OverflowPolicy(42).String() != "unknown" {
		t.Fatal("unexpected name for invalid policy")
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	for _, p := range []OverflowPolicy{OverflowStop, OverflowDropNewest} {
		got, err := ParseOverflowPolicy(p.String())
		if err != nil || got != p {
			t.Fatalf("ParseOverflowPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if got, err := ParseOverflowPolicy(""); err != nil || got != OverflowStop {
		t.Fatalf("empty name = %v, %v", got, err)
	}
	if _, err := ParseOverflowPolicy("drop-oldest"); err == nil {
		t.Fatal("expected error")
	}
}
