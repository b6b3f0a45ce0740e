package loop

import (
	"container/heap"
	"time"
)

// Timer is a callback scheduled on a Loop. It fires at most once.
type Timer struct {
	loop  *Loop
	when  time.Time
	seq   uint64
	fn    func()
	index int
}

// AfterFunc schedules fn to run on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	l.mu.Lock()
	l.seq++
	t := &Timer{loop: l, when: l.nowLocked().Add(d), seq: l.seq, fn: fn}
	heap.Push(&l.timers, t)
	l.mu.Unlock()
	l.signal()
	return t
}

// Stop cancels the timer. It reports whether the call prevented the timer
// from firing. Stopping a nil timer is a no-op.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&l.timers, t.index)
	return true
}

// Active reports whether the timer is still scheduled.
func (t *Timer) Active() bool {
	if t == nil {
		return false
	}
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()
	return t.index >= 0
}

// timerHeap orders timers by deadline, then by scheduling order.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
