package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/sw33tLie/biliguard/pkg/enrich"
)

func newStore(t *testing.T, content string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	SetDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	return New(v), path
}

func TestKeywordsRoundTrip(t *testing.T) {
	s, path := newStore(t, "filter:\n  keywords: \"原神\"\nbilibili:\n  sessdata: abc\n")
	if got := s.Keywords(); got != "原神" {
		t.Fatalf("want 原神, got %q", got)
	}
	if cfg := s.Bilibili(); cfg.SESSDATA != "abc" || cfg.BaseURL != "https://api.bilibili.com" {
		t.Fatalf("unexpected bilibili config %+v", cfg)
	}

	if err := s.SetKeywords("测试，广告"); err != nil {
		t.Fatalf("set: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("reread: %v", err)
	}
	if got := v.GetString(KeyKeywords); got != "测试，广告" {
		t.Fatalf("keywords not persisted, got %q", got)
	}
}

func TestWatchNotifiesOnKeywordChange(t *testing.T) {
	s, path := newStore(t, "filter:\n  keywords: a\n")
	got := make(chan string, 4)
	s.Watch(func(raw string) { got <- raw })

	if err := os.WriteFile(path, []byte("filter:\n  keywords: b,c\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case raw := <-got:
		if raw != "b,c" {
			t.Fatalf("want b,c, got %q", raw)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification")
	}
}

func TestFormatBlacklist(t *testing.T) {
	tests := []struct {
		name string
		bl   enrich.Blacklist
		err  error
		want string
	}{
		{"not logged in", enrich.Blacklist{Code: -101}, nil, "错误：尚未登录。请先登录bilibili.com。"},
		{"empty", enrich.Blacklist{Code: 0}, nil, "你的黑名单是空的。"},
		{"entries", enrich.Blacklist{Entries: []enrich.BlacklistEntry{{Name: "X", ID: "1"}}}, nil, "成功获取 1 位用户:\n - X (UID: 1)"},
		{"api error", enrich.Blacklist{Code: -400, Message: "请求错误"}, nil, "API 返回错误: 请求错误 (code: -400)"},
		{"transport", enrich.Blacklist{}, errors.New("timeout"), "获取失败，请检查网络连接或查看控制台错误。\n错误信息: timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBlacklist(tt.bl, tt.err); got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}
