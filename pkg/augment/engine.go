// Package augment is the page augmentation engine. It scans a document for
// usernames and content cards, attaches block controls, keyword overlays and
// hover popups, and keeps doing so as the document changes.
//
// Everything in this package runs on the scheduler's goroutine. Remote calls
// go through a Client whose callbacks are delivered on that same goroutine.
package augment

import (
	"sync"
	"time"

	"github.com/sw33tLie/biliguard/pkg/dom"
	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/sw33tLie/biliguard/pkg/loop"
)

// Scheduler is the single thread the engine runs on. *loop.Loop satisfies
// it.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) *loop.Timer
}

// Client issues enrichment requests without blocking. *enrich.Bridge
// satisfies it.
type Client interface {
	UserInfo(uid string, cb func(enrich.UserInfo, error))
	ContentInfo(bvid string, cb func(enrich.ContentInfo, error))
	ModifyRelation(uid string, action enrich.Action, cb func(string, error))
	CheckBlockStatus(uid string, cb func(enrich.BlockStatus, error))
}

// Logger is the logging the engine does: dropped responses and failures that
// are only rendered inline.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// MemoryClipboard keeps the last copied text.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *MemoryClipboard) WriteText(text string) error {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	return nil
}

// Text returns the last copied text.
func (c *MemoryClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Options tunes an Engine. Zero values get defaults.
type Options struct {
	ShowDelay time.Duration
	HideDelay time.Duration
	CopyDelay time.Duration

	// Alert surfaces failed block/unblock attempts to the user.
	Alert     func(msg string)
	Clipboard Clipboard
	Logger    Logger
}

// Stats counts what the engine has done to the document.
type Stats struct {
	Controls    int
	Overlays    int
	CardsHidden int
	Popups      int
}

// Engine augments one document.
type Engine struct {
	doc    *dom.Document
	sched  Scheduler
	client Client
	opts   Options

	log       Logger
	alert     func(string)
	clipboard Clipboard

	marks    markers
	keywords KeywordSet
	hover    *hover
	observer *dom.MutationObserver
	controls []*BlockControl
	stats    Stats
}

// New prepares an engine. Nothing is touched until Start.
func New(doc *dom.Document, sched Scheduler, client Client, opts Options) *Engine {
	if opts.ShowDelay <= 0 {
		opts.ShowDelay = DefaultShowDelay
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.CopyDelay <= 0 {
		opts.CopyDelay = DefaultCopyDelay
	}

	e := &Engine{
		doc:       doc,
		sched:     sched,
		client:    client,
		opts:      opts,
		log:       opts.Logger,
		alert:     opts.Alert,
		clipboard: opts.Clipboard,
		marks:     make(markers),
	}
	if e.log == nil {
		e.log = nopLogger{}
	}
	if e.alert == nil {
		e.alert = func(string) {}
	}
	if e.clipboard == nil {
		e.clipboard = &MemoryClipboard{}
	}
	e.hover = &hover{e: e, shows: make(map[*dom.Element]*loop.Timer)}
	return e
}

// Start loads the initial keywords, scans the whole body and begins
// watching for insertions.
func (e *Engine) Start(keywords KeywordSet) {
	e.keywords = keywords
	e.injectStyle()
	e.watch()
	e.scan(e.doc.Body())
}

// OnLoad rescans the body once the page reports it has finished loading,
// picking up content inserted before the watcher existed.
func (e *Engine) OnLoad() {
	e.scan(e.doc.Body())
}

// KeywordsChanged replaces the keyword set and rescans. Cards that already
// reached an outcome keep it.
func (e *Engine) KeywordsChanged(keywords KeywordSet) {
	e.keywords = keywords
	e.scan(e.doc.Body())
}

// Keywords returns the set in use.
func (e *Engine) Keywords() KeywordSet { return e.keywords }

// Stop ends watching and cancels pending hover timers, show and hide alike.
// Augmentations already in the document stay.
func (e *Engine) Stop() {
	e.unwatch()
	e.hover.stop()
}

// Stats returns counters of what has been done so far.
func (e *Engine) Stats() Stats { return e.stats }

// Controls returns the block controls in creation order.
func (e *Engine) Controls() []*BlockControl {
	return append([]*BlockControl(nil), e.controls...)
}

// Popup reports the kind and id of the visible popup, if any.
func (e *Engine) Popup() (Kind, string, bool) { return e.hover.Active() }

func (e *Engine) dropped(what, id string) {
	e.log.Debugf("dropping %s %s", what, id)
}
