package augment

import "github.com/sw33tLie/biliguard/pkg/dom"

type marker uint8

const (
	markProcessed marker = 1 << iota
	markHoverProcessed
	markKeywordProcessed
	markTagCheckInitiated
)

// markers is the engine's side table of per-element flags. The page's own
// attributes are never used for bookkeeping. A flag, once set, stays set.
type markers map[*dom.Element]marker

func (m markers) has(el *dom.Element, f marker) bool {
	return m[el]&f != 0
}

// set raises f on el and reports whether it was newly raised.
func (m markers) set(el *dom.Element, f marker) bool {
	if m.has(el, f) {
		return false
	}
	m[el] |= f
	return true
}
