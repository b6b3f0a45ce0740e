package augment

import (
	"github.com/sw33tLie/biliguard/pkg/dom"
	"github.com/sw33tLie/biliguard/pkg/enrich"
)

// ControlState is the lifecycle position of a block control.
type ControlState int

const (
	StateInitializing ControlState = iota
	StateResolvingIdentifier
	StateCheckingStatus
	StateIdle
	StateSubmitting
	StateFailed
)

func (s ControlState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateResolvingIdentifier:
		return "resolving-identifier"
	case StateCheckingStatus:
		return "checking-status"
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	labelPending    = "..."
	labelBlock      = "拉黑"
	labelUnblock    = "解除"
	labelUnresolved = "?"

	titleUnresolved   = "无法获取用户信息"
	titleStatusFailed = "状态检查失败"
)

// BlockControl is the inline block/unblock button placed after a username.
// At most one request is outstanding at a time: the button stays disabled
// while one is, and disabled buttons receive no clicks.
type BlockControl struct {
	e      *Engine
	button *dom.Element

	userID    string
	contentID string
	state     ControlState
	blocked   bool
}

func (e *Engine) newBlockControl(id Identity) *BlockControl {
	btn := e.doc.CreateElement("button")
	btn.AddClass(classBlockButton)
	btn.SetText(labelPending)
	btn.SetDisabled(true)

	c := &BlockControl{e: e, button: btn, userID: id.UserID, contentID: id.ContentID}
	if c.userID != "" {
		btn.SetAttr("data-uid", c.userID)
	}
	btn.AddEventListener(dom.Click, c.onClick)
	return c
}

// Button returns the control's element.
func (c *BlockControl) Button() *dom.Element { return c.button }

// State returns the current lifecycle state.
func (c *BlockControl) State() ControlState { return c.state }

// Blocked reports the last known relation.
func (c *BlockControl) Blocked() bool { return c.blocked }

// UserID returns the user the control acts on, once known.
func (c *BlockControl) UserID() string { return c.userID }

// start leaves Initializing. Callers insert the button first.
func (c *BlockControl) start() {
	if c.userID == "" && c.contentID != "" {
		c.resolve()
		return
	}
	if c.userID != "" {
		c.checkStatus()
	}
}

func (c *BlockControl) resolve() {
	c.state = StateResolvingIdentifier
	c.e.client.ContentInfo(c.contentID, func(info enrich.ContentInfo, err error) {
		if !c.button.IsConnected() {
			c.e.dropped("content info for detached control", c.contentID)
			return
		}
		if err != nil || info.AuthorID == "" {
			c.state = StateFailed
			c.button.SetText(labelUnresolved)
			c.button.SetTitle(titleUnresolved)
			return
		}
		c.userID = info.AuthorID
		c.button.SetAttr("data-uid", c.userID)
		c.checkStatus()
	})
}

func (c *BlockControl) checkStatus() {
	c.state = StateCheckingStatus
	c.e.client.CheckBlockStatus(c.userID, func(st enrich.BlockStatus, err error) {
		if !c.button.IsConnected() {
			c.e.dropped("block status for detached control", c.userID)
			return
		}
		c.state = StateIdle
		c.button.SetDisabled(false)
		if err != nil {
			// Fail open so the user can still act.
			c.e.log.Debugf("status check for %s failed: %v", c.userID, err)
			c.setBlocked(false)
			c.button.SetTitle(titleStatusFailed)
			return
		}
		if st.Note != "" {
			c.e.log.Debugf("status check for %s was inconclusive: %s", c.userID, st.Note)
		}
		c.setBlocked(st.Blocked)
	})
}

func (c *BlockControl) setBlocked(blocked bool) {
	c.blocked = blocked
	if blocked {
		c.button.SetText(labelUnblock)
		c.button.SetAttr("data-blocked", "true")
		c.button.AddClass(classBlocked)
		return
	}
	c.button.SetText(labelBlock)
	c.button.SetAttr("data-blocked", "false")
	c.button.RemoveClass(classBlocked)
}

func (c *BlockControl) onClick(ev *dom.Event) {
	ev.PreventDefault()
	ev.StopPropagation()
	if c.userID == "" {
		return
	}

	wasBlocked := c.blocked
	action := enrich.ActionBlock
	if wasBlocked {
		action = enrich.ActionUnblock
	}

	c.state = StateSubmitting
	c.button.SetText(labelPending)
	c.button.SetDisabled(true)

	c.e.client.ModifyRelation(c.userID, action, func(_ string, err error) {
		if !c.button.IsConnected() {
			c.e.dropped("relation change for detached control", c.userID)
			return
		}
		c.state = StateIdle
		c.button.SetDisabled(false)
		if err != nil {
			c.setBlocked(wasBlocked)
			c.e.alert(err.Error())
			return
		}
		c.setBlocked(!wasBlocked)
	})
}

// fixOverflow keeps an inline button visible inside containers that clip
// their content.
func fixOverflow(parent *dom.Element) {
	if parent == nil {
		return
	}
	if !parent.HasClass("up-name") && parent.Style("overflow") != "hidden" {
		return
	}
	parent.SetStyle("overflow", "visible")
	if parent.Style("display") == "block" {
		parent.SetStyle("display", "inline-flex")
		parent.SetStyle("align-items", "center")
	}
}
