package dom

import "golang.org/x/net/html"

// MutationObserver collects elements inserted anywhere in its document and
// delivers them in batches. Delivery is deferred through the schedule
// function so that a burst of insertions becomes one callback, the way
// browser mutation records are delivered after the current task.
type MutationObserver struct {
	doc       *Document
	schedule  func(func())
	callback  func(added []*Element)
	records   []*Element
	scheduled bool
	stopped   bool
}

// Observe starts watching d for inserted elements. schedule must run its
// argument later on the same goroutine that mutates the document.
func (d *Document) Observe(schedule func(func()), callback func(added []*Element)) *MutationObserver {
	o := &MutationObserver{doc: d, schedule: schedule, callback: callback}
	d.observers = append(d.observers, o)
	return o
}

// Disconnect stops delivery. Records not yet delivered are dropped.
func (o *MutationObserver) Disconnect() {
	o.stopped = true
	o.records = nil
	obs := o.doc.observers[:0]
	for _, have := range o.doc.observers {
		if have != o {
			obs = append(obs, have)
		}
	}
	o.doc.observers = obs
}

// TakeRecords returns and clears the undelivered records.
func (o *MutationObserver) TakeRecords() []*Element {
	r := o.records
	o.records = nil
	return r
}

func (o *MutationObserver) enqueue(els []*Element) {
	if o.stopped {
		return
	}
	o.records = append(o.records, els...)
	if o.scheduled {
		return
	}
	o.scheduled = true
	o.schedule(o.flush)
}

func (o *MutationObserver) flush() {
	o.scheduled = false
	if o.stopped {
		return
	}
	records := o.TakeRecords()
	if len(records) == 0 {
		return
	}
	o.callback(records)
}

// notifyAdded reports element children inserted under parent. Only
// insertions into the connected tree are observable.
func (d *Document) notifyAdded(parent *html.Node, nodes []*html.Node) {
	if len(d.observers) == 0 || !d.connected(parent) {
		return
	}
	var added []*Element
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			added = append(added, d.wrap(n))
		}
	}
	if len(added) == 0 {
		return
	}
	for _, o := range append([]*MutationObserver(nil), d.observers...) {
		o.enqueue(added)
	}
}
