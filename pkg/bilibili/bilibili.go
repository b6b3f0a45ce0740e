// Package bilibili implements the enrichment service against the bilibili
// web API.
package bilibili

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/sw33tLie/biliguard/pkg/whttp"
	"github.com/tidwall/gjson"
)

const (
	API_BASE_URL = "https://api.bilibili.com"
	REFERER      = "https://www.bilibili.com/"

	BLACKLIST_PAGE_SIZE = 50
	BLACKLIST_MAX_PAGES = 100
	VIDEO_LIST_SIZE     = 50
	WORD_CLOUD_SIZE     = 15

	// attribute value of /x/relation/stat for an account in the caller's blacklist
	ATTRIBUTE_BLOCKED = 128

	CODE_OK              = 0
	CODE_NOT_AUTHORIZED  = -101
	RELATION_SOURCE_WEB  = "11"
	MODIFY_OK_MESSAGE    = "操作成功！"
	MODIFY_FAIL_MESSAGE  = "操作失败"
	MISSING_CSRF_MESSAGE = "获取 CSRF token 失败，请确保已登录。"
)

// ErrMissingCSRF is returned by write operations when no bili_jct token is
// configured.
var ErrMissingCSRF = errors.New(MISSING_CSRF_MESSAGE)

// Config carries the session cookies and transport settings.
type Config struct {
	SESSDATA string
	CSRF     string // bili_jct cookie
	BaseURL  string
	Proxy    string
}

// Client talks to api.bilibili.com. It satisfies enrich.Service.
type Client struct {
	cfg    Config
	http   *retryablehttp.Client
	cookie string
}

var _ enrich.Service = (*Client)(nil)

// NewClient builds a client. A nil http client gets a single-attempt one.
func NewClient(cfg Config, httpClient *retryablehttp.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = API_BASE_URL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if httpClient == nil {
		var err error
		httpClient, err = whttp.NewClient(cfg.Proxy, 0)
		if err != nil {
			return nil, err
		}
	}

	var cookies []string
	if cfg.SESSDATA != "" {
		cookies = append(cookies, "SESSDATA="+cfg.SESSDATA)
	}
	if cfg.CSRF != "" {
		cookies = append(cookies, "bili_jct="+cfg.CSRF)
	}

	return &Client{cfg: cfg, http: httpClient, cookie: strings.Join(cookies, "; ")}, nil
}

func (c *Client) headers() []whttp.WHTTPHeader {
	h := []whttp.WHTTPHeader{
		{Name: "Referer", Value: REFERER},
		{Name: "Accept", Value: "application/json, text/plain, */*"},
	}
	if c.cookie != "" {
		h = append(h, whttp.WHTTPHeader{Name: "Cookie", Value: c.cookie})
	}
	return h
}

// getJSON issues a GET and returns the body once it is known to be JSON.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (string, error) {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:  "GET",
		URL:     u,
		Headers: c.headers(),
	}, c.http)
	if err != nil {
		return "", err
	}
	if res.StatusCode != 200 {
		return "", fmt.Errorf("HTTP error! status: %d", res.StatusCode)
	}
	if !gjson.Valid(res.BodyString) {
		return "", fmt.Errorf("malformed JSON response from %s", path)
	}
	return res.BodyString, nil
}

// FetchBlacklist returns the caller's blacklist. The API code is kept in the
// result; only transport and decoding problems are errors.
func (c *Client) FetchBlacklist(ctx context.Context) (enrich.Blacklist, error) {
	var bl enrich.Blacklist

	for page := 1; page <= BLACKLIST_MAX_PAGES; page++ {
		body, err := c.getJSON(ctx, "/x/relation/blacks", url.Values{
			"pn": {strconv.Itoa(page)},
			"ps": {strconv.Itoa(BLACKLIST_PAGE_SIZE)},
		})
		if err != nil {
			return enrich.Blacklist{}, err
		}

		bl.Code = int(gjson.Get(body, "code").Int())
		bl.Message = gjson.Get(body, "message").String()
		if bl.Code != CODE_OK {
			bl.Entries = nil
			return bl, nil
		}

		list := gjson.Get(body, "data.list").Array()
		for _, u := range list {
			bl.Entries = append(bl.Entries, enrich.BlacklistEntry{
				Name: u.Get("uname").String(),
				ID:   u.Get("mid").String(),
			})
		}

		total := int(gjson.Get(body, "data.total").Int())
		if len(list) < BLACKLIST_PAGE_SIZE || (total > 0 && len(bl.Entries) >= total) {
			break
		}
	}
	return bl, nil
}

// FetchContentInfo returns tags, author and the optional AI summary of a
// video.
func (c *Client) FetchContentInfo(ctx context.Context, bvid string) (enrich.ContentInfo, error) {
	body, err := c.getJSON(ctx, "/x/web-interface/view/detail", url.Values{"bvid": {bvid}})
	if err != nil {
		return enrich.ContentInfo{}, err
	}
	if code := gjson.Get(body, "code").Int(); code != CODE_OK {
		return enrich.ContentInfo{}, errors.New(apiMessage(body))
	}

	info := enrich.ContentInfo{
		Tags:       []string{},
		AuthorID:   gjson.Get(body, "data.View.owner.mid").String(),
		AuthorName: gjson.Get(body, "data.View.owner.name").String(),
	}
	for _, t := range gjson.Get(body, "data.Tags.#.tag_name").Array() {
		info.Tags = append(info.Tags, t.String())
	}

	cid := gjson.Get(body, "data.View.cid").String()
	info.AISummary = c.fetchSummary(ctx, bvid, cid, info.AuthorID)
	return info, nil
}

// fetchSummary looks up the AI conclusion. It is optional: any failure means
// no summary.
func (c *Client) fetchSummary(ctx context.Context, bvid, cid, upMid string) string {
	if cid == "" {
		return ""
	}
	body, err := c.getJSON(ctx, "/x/web-interface/view/conclusion/get", url.Values{
		"bvid":   {bvid},
		"cid":    {cid},
		"up_mid": {upMid},
	})
	if err != nil || gjson.Get(body, "code").Int() != CODE_OK {
		return ""
	}
	return gjson.Get(body, "data.model_result.summary").String()
}

// CheckBlockStatus reports whether uid is in the caller's blacklist. An API
// level failure is ambiguous and defaults to not blocked.
func (c *Client) CheckBlockStatus(ctx context.Context, uid string) (enrich.BlockStatus, error) {
	body, err := c.getJSON(ctx, "/x/relation/stat", url.Values{"vmid": {uid}})
	if err != nil {
		return enrich.BlockStatus{}, err
	}
	if gjson.Get(body, "code").Int() != CODE_OK || !gjson.Get(body, "data").Exists() {
		return enrich.BlockStatus{Blocked: false, Note: apiMessage(body)}, nil
	}
	return enrich.BlockStatus{Blocked: gjson.Get(body, "data.attribute").Int() == ATTRIBUTE_BLOCKED}, nil
}

// ModifyRelation posts a relation change and returns the confirmation
// message.
func (c *Client) ModifyRelation(ctx context.Context, uid string, action enrich.Action) (string, error) {
	if c.cfg.CSRF == "" {
		return "", ErrMissingCSRF
	}

	form := url.Values{
		"fid":    {uid},
		"act":    {strconv.Itoa(int(action))},
		"re_src": {RELATION_SOURCE_WEB},
		"csrf":   {c.cfg.CSRF},
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "POST",
		URL:    c.cfg.BaseURL + "/x/relation/modify",
		Headers: append(c.headers(), whttp.WHTTPHeader{
			Name: "Content-Type", Value: "application/x-www-form-urlencoded",
		}),
		Body: form.Encode(),
	}, c.http)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if !gjson.Valid(res.BodyString) {
		return "", fmt.Errorf("HTTP error! status: %d", res.StatusCode)
	}
	if gjson.Get(res.BodyString, "code").Int() != CODE_OK {
		msg := gjson.Get(res.BodyString, "message").String()
		if msg == "" {
			msg = MODIFY_FAIL_MESSAGE
		}
		return "", errors.New(msg)
	}
	return MODIFY_OK_MESSAGE, nil
}

func apiMessage(body string) string {
	msg := gjson.Get(body, "message").String()
	if msg == "" {
		msg = "code " + gjson.Get(body, "code").String()
	}
	return msg
}
