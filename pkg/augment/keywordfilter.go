package augment

import (
	"fmt"

	"github.com/sw33tLie/biliguard/pkg/dom"
	"github.com/sw33tLie/biliguard/pkg/enrich"
)

const (
	labelOverlayBlock = "拉黑UP"
	titleOverlayFmt   = "检测到关键词，点击拉黑UP主 (UID: %s)"
)

// filterCard runs the keyword pipeline on one card. The title is checked
// synchronously; tags, and the author when the card carries no user link,
// come from a single content-info request.
func (e *Engine) filterCard(card *dom.Element, contentID string) {
	if e.keywords.Empty() || e.marks.has(card, markKeywordProcessed) {
		return
	}

	titleMatched := false
	if t := titleOf(card); t != nil && e.keywords.Match(t.Text()) {
		titleMatched = true
	}

	if titleMatched {
		if _, ok := directUserID(card); ok {
			e.marks.set(card, markKeywordProcessed)
			e.applyOverlay(card, "")
			return
		}
	}
	if contentID == "" || !e.marks.set(card, markTagCheckInitiated) {
		return
	}

	e.client.ContentInfo(contentID, func(info enrich.ContentInfo, err error) {
		if !card.IsConnected() || e.marks.has(card, markKeywordProcessed) {
			e.dropped("content info for detached or settled card", contentID)
			return
		}
		if err != nil {
			e.log.Debugf("content info for %s failed: %v", contentID, err)
			return
		}
		if titleMatched || e.keywords.MatchAny(info.Tags) {
			e.marks.set(card, markKeywordProcessed)
			e.applyOverlay(card, info.AuthorID)
		}
	})
}

// applyOverlay highlights card and appends a block-only button for the
// author. uid may be empty, in which case the card's own user link is used.
func (e *Engine) applyOverlay(card *dom.Element, uid string) {
	if uid == "" {
		uid, _ = directUserID(card)
	}
	if uid == "" {
		return
	}

	card.AddClass(classHighlight)
	border := e.doc.CreateElement("div")
	border.AddClass(classBorder)
	card.AppendChild(border)

	btn := e.doc.CreateElement("button")
	btn.AddClass(classOverlayButton)
	btn.SetTitle(fmt.Sprintf(titleOverlayFmt, uid))
	btn.SetText(labelOverlayBlock)
	btn.AddEventListener(dom.Click, func(ev *dom.Event) {
		ev.PreventDefault()
		ev.StopPropagation()

		btn.SetText(labelPending)
		btn.SetDisabled(true)
		e.client.ModifyRelation(uid, enrich.ActionBlock, func(_ string, err error) {
			if !btn.IsConnected() {
				e.dropped("relation change for detached overlay", uid)
				return
			}
			btn.SetDisabled(false)
			if err != nil {
				btn.SetText(labelOverlayBlock)
				e.alert(err.Error())
				return
			}
			card.SetStyle("display", "none")
			e.stats.CardsHidden++
		})
	})
	card.AppendChild(btn)
	e.stats.Overlays++
}
