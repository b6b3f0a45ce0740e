package augment

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/yuin/goldmark"
)

const maxPopupTags = 8

var (
	markdown      = goldmark.New()
	summaryPolicy = bluemonday.UGCPolicy()
)

const (
	htmlLoading   = `<div class="ext-loading">加载中...</div>`
	htmlResolving = `<div class="ext-loading">正在解析用户信息...</div>`
	htmlCopied    = `<div class="ext-copied-message">UID 已复制!</div>`

	msgDisconnected = "连接断开，请刷新页面"
	msgUnresolved   = "无法获取用户信息"
	msgLoadFailed   = "加载失败: "
)

func renderUserInfo(d enrich.UserInfo) string {
	words := make([]string, 0, len(d.KeywordCloud))
	for _, w := range d.KeywordCloud {
		words = append(words, w.Word)
	}
	cloud := strings.Join(words, " ")
	if cloud == "" {
		cloud = "无"
	}
	return fmt.Sprintf(`<div class="ext-tt-title">用户详情 (UID: %s)</div>`+
		`<div>视频数: %d | 粉丝: %d</div>`+
		`<div>平均时长: %s</div>`+
		`<div class="ext-tt-cloud">词云: %s</div>`,
		html.EscapeString(d.ID), d.ContentCount, d.Followers,
		html.EscapeString(d.AvgDuration), html.EscapeString(cloud))
}

func renderContentInfo(d enrich.ContentInfo) string {
	tags := d.Tags
	if len(tags) > maxPopupTags {
		tags = tags[:maxPopupTags]
	}
	summary := renderSummary(d.AISummary)
	if summary == "" {
		summary = "暂无"
	}
	return fmt.Sprintf(`<div class="ext-tt-title">视频详情</div>`+
		`<div class="ext-tt-tags">Tags: %s...</div>`+
		`<div class="ext-tt-ai"><strong>AI总结:</strong> %s</div>`,
		html.EscapeString(strings.Join(tags, ", ")), summary)
}

// renderSummary turns the markdown summary into sanitized HTML.
func renderSummary(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return html.EscapeString(md)
	}
	return strings.TrimSpace(summaryPolicy.Sanitize(buf.String()))
}

func renderError(err error) string {
	return html.EscapeString(msgLoadFailed + err.Error())
}
