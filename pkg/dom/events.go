package dom

// Event types the engine listens for.
const (
	Click      = "click"
	MouseEnter = "mouseenter"
	MouseLeave = "mouseleave"
)

// Event is passed to listeners during Dispatch.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the event as handled.
func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation keeps the event from reaching ancestors.
func (ev *Event) StopPropagation() { ev.stopped = true }

type listener struct {
	fn      func(*Event)
	removed bool
}

// AddEventListener registers fn for events of type typ and returns a function
// that unregisters it.
func (e *Element) AddEventListener(typ string, fn func(*Event)) (remove func()) {
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	e.listeners[typ] = append(e.listeners[typ], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		list := e.listeners[typ]
		for i, have := range list {
			if have == l {
				e.listeners[typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount reports how many listeners are registered for typ.
func (e *Element) ListenerCount(typ string) int { return len(e.listeners[typ]) }

// Dispatch fires an event at e. Click events bubble to ancestors and are not
// delivered to disabled elements; mouseenter and mouseleave do not bubble.
func (e *Element) Dispatch(typ string) *Event {
	ev := &Event{Type: typ, Target: e}
	if typ == Click && e.Disabled() {
		return ev
	}
	for cur := e; cur != nil; cur = cur.Parent() {
		ev.CurrentTarget = cur
		cur.fire(ev)
		if ev.stopped || typ != Click {
			break
		}
	}
	return ev
}

func (e *Element) fire(ev *Event) {
	list := append([]*listener(nil), e.listeners[ev.Type]...)
	for _, l := range list {
		if l.removed {
			continue
		}
		l.fn(ev)
	}
}
