// Package loop provides the single-threaded cooperative executor the
// augmentation engine runs on. Every DOM read or write happens inside a task
// run by the loop; blocking work is pushed to goroutines with Async and its
// continuation is posted back as a task.
package loop

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Loop is a task queue plus a timer heap drained by one goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	timers  timerHeap
	seq     uint64
	pending int
	wake    chan struct{}

	manual bool
	now    time.Time
}

// New returns a loop driven by the wall clock.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// NewManual returns a loop whose clock only moves through Advance.
func NewManual(start time.Time) *Loop {
	return &Loop{wake: make(chan struct{}, 1), manual: true, now: start}
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nowLocked()
}

func (l *Loop) nowLocked() time.Time {
	if l.manual {
		return l.now
	}
	return time.Now()
}

// Post queues fn to run on the loop. Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
}

// Async runs work on its own goroutine and posts the returned continuation
// back to the loop. A nil continuation is dropped.
func (l *Loop) Async(work func() func()) {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	go func() {
		cont := work()
		l.mu.Lock()
		l.pending--
		if cont != nil {
			l.queue = append(l.queue, cont)
		}
		l.mu.Unlock()
		l.signal()
	}()
}

// Pending reports how many Async operations have not completed yet.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunPending runs queued tasks, including the ones they queue, and any timers
// already due, until nothing is runnable. It never waits. It returns the
// number of callbacks run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		fn := l.next()
		if fn == nil {
			return n
		}
		fn()
		n++
	}
}

// next pops the next runnable callback: queued tasks first, then due timers.
func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) > 0 {
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		return fn
	}
	if len(l.timers) > 0 && !l.timers[0].when.After(l.nowLocked()) {
		t := heap.Pop(&l.timers).(*Timer)
		return t.fn
	}
	return nil
}

// Settle runs the loop until no task is queued and no Async work is in
// flight. Timers that are not yet due are left scheduled.
func (l *Loop) Settle(ctx context.Context) error {
	for {
		l.RunPending()

		l.mu.Lock()
		idle := l.pending == 0 && len(l.queue) == 0
		l.mu.Unlock()
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Run drives tasks and timers on the calling goroutine until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()

		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		l.mu.Lock()
		if len(l.timers) > 0 && !l.manual {
			wait := time.Until(l.timers[0].when)
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
			timerC = timer.C
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-l.wake:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// Advance moves a manual loop's clock forward by d, firing timers in deadline
// order and running the tasks they queue as it goes.
func (l *Loop) Advance(d time.Duration) {
	l.mu.Lock()
	target := l.now.Add(d)
	l.mu.Unlock()

	for {
		l.RunPending()

		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].when.After(target) {
			l.now = target
			l.mu.Unlock()
			l.RunPending()
			return
		}
		l.now = l.timers[0].when
		l.mu.Unlock()
	}
}
