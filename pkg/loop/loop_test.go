package loop

import (
	"context"
	"reflect"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAdvanceFiresTimersInOrder(t *testing.T) {
	l := NewManual(epoch)
	var got []string
	l.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	l.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	l.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })

	l.Advance(99 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("expected no timer before its deadline, got %v", got)
	}
	l.Advance(time.Second)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestStopPreventsFiring(t *testing.T) {
	l := NewManual(epoch)
	fired := false
	tm := l.AfterFunc(time.Second, func() { fired = true })
	if !tm.Active() {
		t.Fatalf("expected timer to be active")
	}
	if !tm.Stop() {
		t.Fatalf("expected Stop to report a cancelled timer")
	}
	if tm.Stop() {
		t.Fatalf("second Stop should report false")
	}
	l.Advance(2 * time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestTimerScheduledFromTimer(t *testing.T) {
	l := NewManual(epoch)
	var at []time.Duration
	l.AfterFunc(time.Second, func() {
		at = append(at, l.Now().Sub(epoch))
		l.AfterFunc(time.Second, func() { at = append(at, l.Now().Sub(epoch)) })
	})
	l.Advance(5 * time.Second)
	want := []time.Duration{time.Second, 2 * time.Second}
	if !reflect.DeepEqual(at, want) {
		t.Fatalf("want %v, got %v", want, at)
	}
}

func TestSettleWaitsForAsync(t *testing.T) {
	l := NewManual(epoch)
	release := make(chan struct{})
	done := false
	l.Async(func() func() {
		<-release
		return func() { done = true }
	})
	if l.Pending() != 1 {
		t.Fatalf("expected one pending operation, got %d", l.Pending())
	}
	l.RunPending()
	if done {
		t.Fatalf("continuation ran before work completed")
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !done {
		t.Fatalf("continuation did not run")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	l.AfterFunc(10*time.Millisecond, cancel)

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("loop did not stop")
	}
}
