package enrich

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Scheduler runs blocking work off the caller's thread and hands the
// continuation back to it. *loop.Loop satisfies it.
type Scheduler interface {
	Async(work func() func())
}

// Logger is the subset of logrus the bridge uses.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// Bridge is the non-blocking side of the service: every method returns
// immediately and the callback later runs on the scheduler's thread. There
// are no retries and no queueing beyond what the scheduler does.
type Bridge struct {
	svc     Service
	sched   Scheduler
	timeout time.Duration
	log     Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithTimeout bounds each request. Zero means no bound.
func WithTimeout(d time.Duration) BridgeOption {
	return func(b *Bridge) { b.timeout = d }
}

// WithLogger sets the logger for dropped or failed requests.
func WithLogger(l Logger) BridgeOption {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBridge connects svc to sched.
func NewBridge(svc Service, sched Scheduler, opts ...BridgeOption) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{svc: svc, sched: sched, log: nopLogger{}, ctx: ctx, cancel: cancel}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Close tears the channel down. Requests in flight and every later request
// complete with ErrChannelClosed.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.cancel()
}

// Closed reports whether Close was called.
func (b *Bridge) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func dispatch[T any](b *Bridge, name string, call func(ctx context.Context) (T, error), cb func(T, error)) {
	b.mu.Lock()
	closed, base := b.closed, b.ctx
	b.mu.Unlock()

	if closed {
		b.sched.Async(func() func() {
			var zero T
			return func() { cb(zero, ErrChannelClosed) }
		})
		return
	}

	b.sched.Async(func() func() {
		ctx, cancel := base, context.CancelFunc(func() {})
		if b.timeout > 0 {
			ctx, cancel = context.WithTimeout(base, b.timeout)
		}
		defer cancel()

		v, err := call(ctx)
		if err != nil && base.Err() != nil {
			err = ErrChannelClosed
		}
		if err != nil && !errors.Is(err, ErrChannelClosed) {
			b.log.Debugf("%s failed: %v", name, err)
		}
		return func() { cb(v, err) }
	})
}

// Blacklist requests the caller's blacklist.
func (b *Bridge) Blacklist(cb func(Blacklist, error)) {
	dispatch(b, "get-blacklist", func(ctx context.Context) (Blacklist, error) {
		return b.svc.FetchBlacklist(ctx)
	}, cb)
}

// UserInfo requests the detail of one user.
func (b *Bridge) UserInfo(uid string, cb func(UserInfo, error)) {
	dispatch(b, "get-user-info", func(ctx context.Context) (UserInfo, error) {
		return b.svc.FetchUserInfo(ctx, uid)
	}, cb)
}

// ContentInfo requests the metadata of one piece of content.
func (b *Bridge) ContentInfo(bvid string, cb func(ContentInfo, error)) {
	dispatch(b, "get-content-info", func(ctx context.Context) (ContentInfo, error) {
		return b.svc.FetchContentInfo(ctx, bvid)
	}, cb)
}

// ModifyRelation blocks or unblocks a user.
func (b *Bridge) ModifyRelation(uid string, action Action, cb func(string, error)) {
	dispatch(b, "modify-relation", func(ctx context.Context) (string, error) {
		return b.svc.ModifyRelation(ctx, uid, action)
	}, cb)
}

// CheckBlockStatus asks whether uid is blocked.
func (b *Bridge) CheckBlockStatus(uid string, cb func(BlockStatus, error)) {
	dispatch(b, "check-block-status", func(ctx context.Context) (BlockStatus, error) {
		return b.svc.CheckBlockStatus(ctx, uid)
	}, cb)
}
