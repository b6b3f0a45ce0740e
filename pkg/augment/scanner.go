package augment

import (
	"strings"

	"github.com/sw33tLie/biliguard/pkg/dom"
)

// collect returns the elements under root matching sel, root included.
func collect(root *dom.Element, sel string) []*dom.Element {
	els := root.QueryAll(sel)
	if root.Matches(sel) {
		els = append(els, root)
	}
	return els
}

// scan augments everything eligible under root. Calling it again on the
// same or an overlapping subtree is safe: the side table decides what has
// already been done.
func (e *Engine) scan(root *dom.Element) {
	if root == nil {
		return
	}
	e.scanUsernames(root)
	e.scanCards(root)
}

func (e *Engine) scanUsernames(root *dom.Element) {
	for _, link := range collect(root, usernameSelector) {
		if !e.marks.set(link, markProcessed) {
			continue
		}
		if InHeader(link) {
			continue
		}
		// avatar-only links carry no text
		if strings.TrimSpace(link.Text()) == "" {
			continue
		}

		id := IdentityOf(link)
		if id.Empty() {
			continue
		}

		ctl := e.newBlockControl(id)
		link.InsertAfter(ctl.button)
		fixOverflow(link.Parent())
		e.controls = append(e.controls, ctl)
		e.stats.Controls++
		ctl.start()

		if id.UserID != "" {
			e.hover.bind(link, KindUser, id.UserID)
		} else {
			e.hover.bind(link, KindUserResolve, id.ContentID)
		}
	}
}

func (e *Engine) scanCards(root *dom.Element) {
	for _, card := range collect(root, cardSelector) {
		// outermost card only
		if p := card.Parent(); p != nil && p.Closest(cardSelector) != nil {
			continue
		}

		link, contentID := contentLink(card)
		e.filterCard(card, contentID)

		if contentID == "" {
			continue
		}
		cover := coverOf(card)
		if cover == nil {
			cover = link
		}
		title := titleOf(card)
		if title == nil {
			title = card.Query(titleLinkSelector)
		}
		for _, anchor := range []*dom.Element{cover, title} {
			if anchor != nil && e.marks.set(anchor, markHoverProcessed) {
				e.hover.bind(anchor, KindContent, contentID)
			}
		}
	}
}
