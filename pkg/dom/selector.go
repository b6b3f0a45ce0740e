package dom

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var selectorCache sync.Map // string -> goquery.Matcher

// matcher returns the compiled selector for sel. Selectors used by this
// module are constants, so an invalid one is a programming error.
func matcher(sel string) goquery.Matcher {
	if m, ok := selectorCache.Load(sel); ok {
		return m.(goquery.Matcher)
	}
	m := cascadia.MustCompile(sel)
	selectorCache.Store(sel, goquery.Matcher(m))
	return m
}

func selection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}
