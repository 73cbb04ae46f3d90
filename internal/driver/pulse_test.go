package driver

import (
	"context"
	"testing"
	"time"
)

func TestPulseTimestamps(t *testing.T) {
	epoch := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pulse := NewPulse(epoch, 50*time.Millisecond, 0)

	var got []time.Time
	ctx, cancel := context.WithCancel(context.Background())

	err := pulse.Run(ctx, func(now time.Time) {
		got = append(got, now)
		if len(got) == 5 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(got) < 5 {
		t.Fatalf("got %d ticks, want at least 5", len(got))
	}
	for i := 0; i < 5; i++ {
		want := epoch.Add(time.Duration(i) * 50 * time.Millisecond)
		if !got[i].Equal(want) {
			t.Errorf("tick %d = %v, want %v", i, got[i], want)
		}
	}
}

func TestPulseDeterministic(t *testing.T) {
	epoch := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	run := func() []time.Time {
		pulse := NewPulse(epoch, 100*time.Millisecond, 0)
		var got []time.Time
		ctx, cancel := context.WithCancel(context.Background())
		pulse.Run(ctx, func(now time.Time) {
			got = append(got, now)
			if len(got) == 20 {
				cancel()
			}
		})
		return got[:20]
	}

	first := run()
	second := run()
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("tick %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestPulseElapsed(t *testing.T) {
	epoch := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pulse := NewPulse(epoch, 50*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	pulse.Run(ctx, func(time.Time) {
		count++
		if count == 10 {
			cancel()
		}
	})

	if got := pulse.Elapsed(); got < 500*time.Millisecond {
		t.Errorf("Elapsed() = %v, want at least 500ms", got)
	}
}

func TestPulseInvalidPeriod(t *testing.T) {
	epoch := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pulse := NewPulse(epoch, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	var first, second time.Time
	count := 0
	pulse.Run(ctx, func(now time.Time) {
		count++
		switch count {
		case 1:
			first = now
		case 2:
			second = now
			cancel()
		}
	})

	if !second.After(first) {
		t.Errorf("synthetic clock did not advance: %v then %v", first, second)
	}
}

func TestWallclockCancellation(t *testing.T) {
	wc := NewWallclock(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	err := wc.Run(ctx, func(time.Time) {
		count++
		if count == 3 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count < 3 {
		t.Errorf("got %d ticks, want at least 3", count)
	}
}

func TestWallclockImmediateFirstTick(t *testing.T) {
	wc := NewWallclock(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	ticked := false
	done := make(chan struct{})
	go func() {
		wc.Run(ctx, func(time.Time) {
			ticked = true
			cancel()
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first tick did not arrive promptly")
	}
	if !ticked {
		t.Error("tick callback never invoked")
	}
}
