package whttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL        string
	Method     string
	CustomHost string
	Headers    []WHTTPHeader
	Body       string

	// BasicAuth is sent when either half is set.
	BasicAuthUser string
	BasicAuthPass string
}

type WHTTPRes struct {
	StatusCode     int
	ResponseLength int
	HTTPTitle      string
	BodyString     string
	Headers        http.Header
}

const USER_AGENT = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// NewClient returns a single-attempt client: no retries, and non-2xx
// responses are handed back to the caller instead of turned into errors.
func NewClient(proxy string, timeout time.Duration) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 0
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		client.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client, nil
}

var defaultClient, _ = NewClient("", 30*time.Second)

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	if client == nil {
		client = defaultClient
	}

	var body interface{}
	if wReq.Body != "" {
		body = strings.NewReader(wReq.Body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, wReq.Method, wReq.URL, body)
	if err != nil {
		return nil, err
	}

	// Set custom Host header
	if wReq.CustomHost != "" {
		req.Host = wReq.CustomHost
	} else {
		if strings.HasSuffix(req.Host, ":80") {
			req.Host = strings.TrimSuffix(req.Host, ":80")
		} else if strings.HasSuffix(req.Host, ":443") {
			req.Host = strings.TrimSuffix(req.Host, ":443")
		}
	}

	// Set common headers
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	// Set custom headers
	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	if wReq.BasicAuthUser != "" || wReq.BasicAuthPass != "" {
		req.SetBasicAuth(wReq.BasicAuthUser, wReq.BasicAuthPass)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	wRes = &WHTTPRes{
		StatusCode: resp.StatusCode,
		BodyString: string(bodyBytes),
		Headers:    resp.Header,
	}

	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html") {
		if title, ok := getHTMLTitle(wRes.BodyString); ok {
			wRes.HTTPTitle = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
		}
	}

	wRes.ResponseLength = len([]rune(wRes.BodyString))
	return wRes, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(requestBody string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(requestBody))
	if err != nil {
		return "", false
	}

	return traverse(doc)
}
