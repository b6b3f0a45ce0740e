// Package settings holds the persisted configuration the tool reads: the
// keyword filter list and the site credentials. It is a thin layer over a
// viper instance so the caller decides where the file lives.
package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/sw33tLie/biliguard/pkg/bilibili"
	"github.com/sw33tLie/biliguard/pkg/enrich"
)

const (
	KeyKeywords       = "filter.keywords"
	KeySESSDATA       = "bilibili.sessdata"
	KeyCSRF           = "bilibili.csrf"
	KeyBaseURL        = "bilibili.baseurl"
	KeyServerUsername = "server.username"
	KeyServerPassword = "server.password"
)

// SetDefaults registers an empty default for every key so a freshly written
// config file lists them all.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyKeywords, "")
	v.SetDefault(KeySESSDATA, "")
	v.SetDefault(KeyCSRF, "")
	v.SetDefault(KeyBaseURL, bilibili.API_BASE_URL)
	v.SetDefault(KeyServerUsername, "")
	v.SetDefault(KeyServerPassword, "")
}

// Store reads and writes settings through viper.
type Store struct {
	v *viper.Viper

	mu       sync.Mutex
	last     string
	watching bool
	subs     []func(string)
}

// New wraps v. v should already have its config file set and read.
func New(v *viper.Viper) *Store {
	return &Store{v: v, last: v.GetString(KeyKeywords)}
}

// Keywords returns the raw, comma-delimited keyword string.
func (s *Store) Keywords() string {
	return s.v.GetString(KeyKeywords)
}

// SetKeywords saves the raw keyword string to the config file.
func (s *Store) SetKeywords(raw string) error {
	s.v.Set(KeyKeywords, raw)
	if err := s.v.WriteConfig(); err != nil {
		return fmt.Errorf("saving keywords: %w", err)
	}
	return nil
}

// Bilibili returns the API client configuration stored in the file.
func (s *Store) Bilibili() bilibili.Config {
	return bilibili.Config{
		SESSDATA: s.v.GetString(KeySESSDATA),
		CSRF:     s.v.GetString(KeyCSRF),
		BaseURL:  s.v.GetString(KeyBaseURL),
	}
}

// ServerCredentials returns the basic auth pair of the HTTP bridge.
func (s *Store) ServerCredentials() (string, string) {
	return s.v.GetString(KeyServerUsername), s.v.GetString(KeyServerPassword)
}

// Watch calls fn with the new raw keyword string each time the config file
// changes the keyword setting. fn runs on viper's watcher goroutine.
func (s *Store) Watch(fn func(raw string)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	start := !s.watching
	s.watching = true
	s.mu.Unlock()

	if !start {
		return
	}
	s.v.OnConfigChange(func(fsnotify.Event) {
		raw := s.v.GetString(KeyKeywords)

		s.mu.Lock()
		if raw == s.last {
			s.mu.Unlock()
			return
		}
		s.last = raw
		subs := append([]func(string){}, s.subs...)
		s.mu.Unlock()

		for _, sub := range subs {
			sub(raw)
		}
	})
	s.v.WatchConfig()
}

// FormatBlacklist renders a blacklist fetch as the plain text shown by the
// settings surface.
func FormatBlacklist(bl enrich.Blacklist, err error) string {
	if err != nil {
		return "获取失败，请检查网络连接或查看控制台错误。\n错误信息: " + err.Error()
	}
	switch {
	case bl.Code == bilibili.CODE_NOT_AUTHORIZED:
		return "错误：尚未登录。请先登录bilibili.com。"
	case bl.Code != bilibili.CODE_OK:
		return fmt.Sprintf("API 返回错误: %s (code: %d)", bl.Message, bl.Code)
	case len(bl.Entries) == 0:
		return "你的黑名单是空的。"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "成功获取 %d 位用户:", len(bl.Entries))
	for _, e := range bl.Entries {
		fmt.Fprintf(&sb, "\n - %s (UID: %s)", e.Name, e.ID)
	}
	return sb.String()
}
