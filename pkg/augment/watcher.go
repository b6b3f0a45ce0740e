package augment

import "github.com/sw33tLie/biliguard/pkg/dom"

// watch scans every element inserted into the document from now on.
// Insertions are delivered in batches on the scheduler.
func (e *Engine) watch() {
	if e.observer != nil {
		return
	}
	e.observer = e.doc.Observe(e.sched.Post, func(added []*dom.Element) {
		for _, el := range added {
			if !el.IsConnected() {
				continue
			}
			e.scan(el)
		}
	})
}

func (e *Engine) unwatch() {
	if e.observer == nil {
		return
	}
	e.observer.Disconnect()
	e.observer = nil
}
