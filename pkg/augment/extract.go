package augment

import (
	"net/url"
	"regexp"

	"github.com/sw33tLie/biliguard/pkg/dom"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

const siteDomain = "bilibili.com"

var (
	userIDPattern    = regexp.MustCompile(`space\.bilibili\.com/(\d+)`)
	contentIDPattern = regexp.MustCompile(`/video/(BV\w+)`)
)

// Identity is what could be extracted for an element. A direct UserID
// always wins; ContentID is only filled when no UserID was found.
type Identity struct {
	UserID    string
	ContentID string
}

// Empty reports whether nothing usable was found.
func (id Identity) Empty() bool { return id.UserID == "" && id.ContentID == "" }

// onSite reports whether href stays on the site. Relative links do; absolute
// ones must have bilibili.com as their registrable domain, which rules out
// hosts like space.bilibili.com.example.net.
func onSite(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return true
	}
	domain, err := publicsuffix.Domain(u.Hostname())
	return err == nil && domain == siteDomain
}

// UserIDFromHref returns the numeric id of a user-space link.
func UserIDFromHref(href string) string {
	if !onSite(href) {
		return ""
	}
	if m := userIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

// ContentIDFromHref returns the BV token of a video link.
func ContentIDFromHref(href string) string {
	if !onSite(href) {
		return ""
	}
	if m := contentIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

// IdentityOf extracts the identity behind a username-like element: the user
// id in its own href, else the content link of the card around it.
func IdentityOf(link *dom.Element) Identity {
	if uid := UserIDFromHref(link.Href()); uid != "" {
		return Identity{UserID: uid}
	}
	if card := link.Closest(cardContextSelector); card != nil {
		if vid := card.Query(contentLinkSelector); vid != nil {
			return Identity{ContentID: ContentIDFromHref(vid.Href())}
		}
	}
	return Identity{}
}

// InHeader reports whether el sits in the site-wide navigation, where the
// signed-in user's own name appears.
func InHeader(el *dom.Element) bool {
	return el.Closest(headerSelector) != nil
}

// directUserID returns the user id of the first user link inside card and
// whether such a link exists at all.
func directUserID(card *dom.Element) (string, bool) {
	link := card.Query(userLinkSelector)
	if link == nil {
		return "", false
	}
	return UserIDFromHref(link.Href()), true
}

// contentLink returns the card's content link and its token.
func contentLink(card *dom.Element) (*dom.Element, string) {
	link := card.Query(contentLinkSelector)
	if link == nil {
		return nil, ""
	}
	return link, ContentIDFromHref(link.Href())
}

// firstMatch walks matchers in priority order and returns the first
// descendant of root matched by any of them.
func firstMatch(root *dom.Element, matchers []string) *dom.Element {
	for _, sel := range matchers {
		if el := root.Query(sel); el != nil {
			return el
		}
	}
	return nil
}

func titleOf(card *dom.Element) *dom.Element { return firstMatch(card, titleMatchers) }

func coverOf(card *dom.Element) *dom.Element { return firstMatch(card, coverMatchers) }
