// Package enrich defines the request/response contract between the
// augmentation engine and the service that talks to the site's API.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrChannelClosed is reported when the bridge to the service has gone away,
// before or while a request was in flight.
var ErrChannelClosed = errors.New("enrichment channel closed")

// Action is a relation change understood by the site's relation API.
type Action int

const (
	ActionBlock   Action = 5
	ActionUnblock Action = 6
)

func (a Action) String() string {
	switch a {
	case ActionBlock:
		return "block"
	case ActionUnblock:
		return "unblock"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction accepts "block", "unblock" or the numeric API codes.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block", "5":
		return ActionBlock, nil
	case "unblock", "6":
		return ActionUnblock, nil
	}
	return 0, fmt.Errorf("unknown relation action %q", s)
}

// BlacklistEntry is one blocked account.
type BlacklistEntry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Blacklist carries the API status along with the entries so callers can
// tell "not logged in" apart from "empty".
type Blacklist struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Entries []BlacklistEntry `json:"entries"`
}

// WordCount is one entry of a keyword-frequency summary.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// UserInfo is the detail shown for a user popup.
type UserInfo struct {
	ID           string      `json:"id"`
	Followers    int64       `json:"followers"`
	ContentCount int64       `json:"content_count"`
	AvgDuration  string      `json:"avg_duration"`
	KeywordCloud []WordCount `json:"keyword_cloud"`
}

// ContentInfo is the metadata of one piece of content.
type ContentInfo struct {
	Tags       []string `json:"tags"`
	AISummary  string   `json:"ai_summary"`
	AuthorID   string   `json:"author_id"`
	AuthorName string   `json:"author_name"`
}

// BlockStatus is the result of a status check. Note carries the API message
// when the status could not be determined and Blocked defaulted to false.
type BlockStatus struct {
	Blocked bool   `json:"blocked"`
	Note    string `json:"note,omitempty"`
}

// Service is the external enrichment provider. Each call is a single
// attempt.
type Service interface {
	FetchBlacklist(ctx context.Context) (Blacklist, error)
	FetchUserInfo(ctx context.Context, uid string) (UserInfo, error)
	FetchContentInfo(ctx context.Context, bvid string) (ContentInfo, error)
	ModifyRelation(ctx context.Context, uid string, action Action) (string, error)
	CheckBlockStatus(ctx context.Context, uid string) (BlockStatus, error)
}
