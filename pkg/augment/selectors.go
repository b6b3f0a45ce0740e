package augment

import "strings"

// Selector groups for the markup shapes the site uses for the same concept.
var (
	usernameSelectors = []string{
		`a[href*="space.bilibili.com"]`,
		`.up-name a`,
		`.bili-dyn-card-user__name`,
		`.user-name a`,
		`.up-name__text`,
		`.bili-dyn-title__text`,
	}

	cardSelectors = []string{
		`.bili-video-card`,
		`.feed-card`,
		`.video-item`,
		`.bili-video-card__wrap`,
		`.video-card`,
		`div[class*="search-all-list"] .video-item`,
		`.video-list .video-item-mixin`,
		`.rank-item`,
		`.brand-ad-list`,
		`.small-item`,
		`.card-item`,
		`.bili-dyn-list__item`,
	}

	// containers a name-only link borrows its content link from
	cardContextSelectors = []string{
		`.video-card`,
		`.bili-video-card`,
		`.video-item`,
		`.small-item`,
		`.rank-item`,
		`.bili-dyn-list__item`,
		`.bili-video-card__wrap`,
	}

	headerSelectors = []string{
		`.bili-header`,
		`.mini-header`,
		`#international-header`,
		`.z-top-nav`,
		`.v-header`,
	}

	// Prioritized: the first selector that matches anything wins.
	titleMatchers = []string{
		`.bili-dyn-card-video__title`,
		`.video-name`,
		`[class*="tit"]:not(.bili-dyn-title)`,
		`h3`,
		`.title`,
	}
	coverMatchers = []string{
		`.bili-video-card__image--link`,
		`.bili-video-card__cover`,
		`.cover`,
		`.pic`,
		`a.img-anchor`,
	}
)

const (
	userLinkSelector    = `a[href*="space.bilibili.com"]`
	contentLinkSelector = `a[href*="/video/BV"]`
	titleLinkSelector   = `a.title`
	highlightSelector   = "." + classHighlight
)

var (
	usernameSelector    = strings.Join(usernameSelectors, ", ")
	cardSelector        = strings.Join(cardSelectors, ", ")
	cardContextSelector = strings.Join(cardContextSelectors, ", ")
	headerSelector      = strings.Join(headerSelectors, ", ")
)

// Class names and ids the engine adds to the page.
const (
	classBlockButton   = "ext-block-button"
	classBlocked       = "ext-blocked"
	classHighlight     = "ext-keyword-highlight"
	classBorder        = "ext-highlight-border"
	classOverlayButton = "ext-overlay-block-btn"
	tooltipID          = "ext-hover-tooltip"
	styleID            = "ext-style"
)
