package augment

import (
	"errors"
	"fmt"
	"time"

	"github.com/sw33tLie/biliguard/pkg/dom"
	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/sw33tLie/biliguard/pkg/loop"
)

// Kind selects what a hover popup shows.
type Kind string

const (
	KindUser        Kind = "user"
	KindContent     Kind = "content"
	KindUserResolve Kind = "user-resolve"
)

const (
	DefaultShowDelay = 500 * time.Millisecond
	DefaultHideDelay = 1000 * time.Millisecond
	DefaultCopyDelay = 1200 * time.Millisecond
)

// Clipboard receives copied user ids.
type Clipboard interface {
	WriteText(text string) error
}

// popup is the one visible tooltip.
type popup struct {
	el     *dom.Element
	anchor *dom.Element
	kind   Kind
	id     string

	// While the copy confirmation shows, new content is parked in body.
	copying bool
	body    string
}

func (p *popup) setContent(s string) {
	if p.copying {
		p.body = s
		return
	}
	_ = p.el.SetInnerHTML(s)
}

// hover owns the document's single popup, its hide timer and the pending
// show timer of every anchor.
type hover struct {
	e         *Engine
	current   *popup
	hideTimer *loop.Timer
	shows     map[*dom.Element]*loop.Timer
}

// bind attaches debounced show and hide behavior to anchor.
func (h *hover) bind(anchor *dom.Element, kind Kind, id string) {
	anchor.AddEventListener(dom.MouseEnter, func(*dom.Event) {
		if anchor.Closest(highlightSelector) != nil {
			return
		}
		h.cancelHide()
		h.cancelShow(anchor)
		h.shows[anchor] = h.e.sched.AfterFunc(h.e.opts.ShowDelay, func() {
			delete(h.shows, anchor)
			h.show(anchor, kind, id)
		})
	})
	anchor.AddEventListener(dom.MouseLeave, func(*dom.Event) {
		pending := h.cancelShow(anchor)
		// A popup from another anchor may still be up; it needs its hide
		// timer back after that anchor's mouseenter cancelled it.
		if pending && h.current == nil {
			return
		}
		h.scheduleHide()
	})
}

// cancelShow stops anchor's pending show and reports whether there was one.
func (h *hover) cancelShow(anchor *dom.Element) bool {
	t, ok := h.shows[anchor]
	if !ok {
		return false
	}
	delete(h.shows, anchor)
	return t.Stop()
}

// stop cancels every pending timer. The visible popup, if any, stays.
func (h *hover) stop() {
	for anchor := range h.shows {
		h.cancelShow(anchor)
	}
	h.cancelHide()
}

func (h *hover) cancelHide() {
	h.hideTimer.Stop()
	h.hideTimer = nil
}

func (h *hover) scheduleHide() {
	h.cancelHide()
	h.hideTimer = h.e.sched.AfterFunc(h.e.opts.HideDelay, func() {
		h.hideTimer = nil
		h.remove()
	})
}

// remove tears the popup down, along with any stray one left in the page.
func (h *hover) remove() {
	if h.current != nil {
		h.current.el.Remove()
		h.current = nil
	}
	if old := h.e.doc.GetElementByID(tooltipID); old != nil {
		old.Remove()
	}
}

// live reports whether p is still the popup on screen.
func (h *hover) live(p *popup) bool {
	return h.current == p && p.el.IsConnected()
}

// Active returns the kind and id of the visible popup.
func (h *hover) Active() (Kind, string, bool) {
	if h.current == nil || !h.current.el.IsConnected() {
		return "", "", false
	}
	return h.current.kind, h.current.id, true
}

func (h *hover) show(anchor *dom.Element, kind Kind, id string) {
	h.remove()

	doc := h.e.doc
	el := doc.CreateElement("div")
	el.SetID(tooltipID)
	_ = el.SetInnerHTML(htmlLoading)

	rect := doc.Rect(anchor)
	sx, sy := doc.Scroll()
	el.SetStyle("top", fmt.Sprintf("%gpx", sy+rect.Bottom+10))
	el.SetStyle("left", fmt.Sprintf("%gpx", sx+rect.Left))

	p := &popup{el: el, anchor: anchor, kind: kind, id: id}
	el.AddEventListener(dom.MouseEnter, func(*dom.Event) { h.cancelHide() })
	el.AddEventListener(dom.MouseLeave, func(*dom.Event) {
		if h.current == p {
			h.remove()
		}
	})

	body := doc.Body()
	if body == nil {
		return
	}
	body.AppendChild(el)
	h.current = p
	h.e.stats.Popups++

	switch kind {
	case KindUser:
		h.loadUser(p)
	case KindUserResolve:
		h.resolveUser(p)
	case KindContent:
		h.loadContent(p)
	}
}

func (h *hover) failure(p *popup, err error) {
	if errors.Is(err, enrich.ErrChannelClosed) {
		p.setContent(msgDisconnected)
		return
	}
	p.setContent(renderError(err))
}

func (h *hover) loadUser(p *popup) {
	p.el.SetStyle("cursor", "pointer")
	p.el.SetTitle("点击复制UID")
	h.bindCopy(p)

	h.e.client.UserInfo(p.id, func(info enrich.UserInfo, err error) {
		if !h.live(p) {
			h.e.dropped("user info for a closed popup", p.id)
			return
		}
		if err != nil {
			h.failure(p, err)
			return
		}
		p.setContent(renderUserInfo(info))
	})
}

func (h *hover) resolveUser(p *popup) {
	p.setContent(htmlResolving)
	h.e.client.ContentInfo(p.id, func(info enrich.ContentInfo, err error) {
		if !h.live(p) {
			h.e.dropped("content info for a closed popup", p.id)
			return
		}
		switch {
		case err == nil && info.AuthorID != "":
			h.show(p.anchor, KindUser, info.AuthorID)
		case errors.Is(err, enrich.ErrChannelClosed):
			p.setContent(msgDisconnected)
		default:
			p.setContent(msgUnresolved)
		}
	})
}

func (h *hover) loadContent(p *popup) {
	h.e.client.ContentInfo(p.id, func(info enrich.ContentInfo, err error) {
		if !h.live(p) {
			h.e.dropped("content info for a closed popup", p.id)
			return
		}
		if err != nil {
			h.failure(p, err)
			return
		}
		p.setContent(renderContentInfo(info))
	})
}

// bindCopy makes a click on a user popup copy its id. The handler is off
// while the confirmation shows, so repeated clicks are ignored.
func (h *hover) bindCopy(p *popup) {
	var handler func(*dom.Event)
	var unbind func()
	handler = func(ev *dom.Event) {
		ev.StopPropagation()
		unbind()

		if err := h.e.clipboard.WriteText(p.id); err != nil {
			h.e.log.Debugf("failed to copy UID %s: %v", p.id, err)
			unbind = p.el.AddEventListener(dom.Click, handler)
			return
		}

		p.body = p.el.InnerHTML()
		_ = p.el.SetInnerHTML(htmlCopied)
		p.copying = true

		h.e.sched.AfterFunc(h.e.opts.CopyDelay, func() {
			p.copying = false
			if !h.live(p) {
				return
			}
			_ = p.el.SetInnerHTML(p.body)
			unbind = p.el.AddEventListener(dom.Click, handler)
		})
	}
	unbind = p.el.AddEventListener(dom.Click, handler)
}
