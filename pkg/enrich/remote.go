package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/biliguard/pkg/whttp"
	"github.com/tidwall/gjson"
)

// Remote is a Service backed by a running HTTP bridge (see the serve
// command). Responses use the {"success","data","error"} envelope.
type Remote struct {
	baseURL  string
	username string
	password string
	http     *retryablehttp.Client
}

var _ Service = (*Remote)(nil)

// NewRemote points a Remote at baseURL. Empty credentials disable basic auth.
func NewRemote(baseURL, username, password string, httpClient *retryablehttp.Client) *Remote {
	return &Remote{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     httpClient,
	}
}

func (r *Remote) do(ctx context.Context, method, path, body string, out interface{}) error {
	headers := []whttp.WHTTPHeader{{Name: "Accept", Value: "application/json"}}
	if body != "" {
		headers = append(headers, whttp.WHTTPHeader{Name: "Content-Type", Value: "application/json"})
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:  method,
		URL:     r.baseURL + path,
		Headers: headers,
		Body:    body,

		BasicAuthUser: r.username,
		BasicAuthPass: r.password,
	}, r.http)
	if err != nil {
		return err
	}
	if !gjson.Valid(res.BodyString) {
		return fmt.Errorf("HTTP error! status: %d", res.StatusCode)
	}

	env := gjson.Parse(res.BodyString)
	if !env.Get("success").Bool() {
		msg := env.Get("error").String()
		if msg == "" {
			msg = fmt.Sprintf("bridge request failed with status %d", res.StatusCode)
		}
		return errors.New(msg)
	}
	data := env.Get("data")
	if out == nil || !data.Exists() {
		return nil
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (r *Remote) FetchBlacklist(ctx context.Context) (Blacklist, error) {
	var bl Blacklist
	err := r.do(ctx, "GET", "/api/blacklist", "", &bl)
	return bl, err
}

func (r *Remote) FetchUserInfo(ctx context.Context, uid string) (UserInfo, error) {
	var info UserInfo
	err := r.do(ctx, "GET", "/api/users/"+url.PathEscape(uid), "", &info)
	return info, err
}

func (r *Remote) FetchContentInfo(ctx context.Context, bvid string) (ContentInfo, error) {
	var info ContentInfo
	err := r.do(ctx, "GET", "/api/videos/"+url.PathEscape(bvid), "", &info)
	return info, err
}

func (r *Remote) ModifyRelation(ctx context.Context, uid string, action Action) (string, error) {
	body, _ := json.Marshal(map[string]string{"action": action.String()})
	var msg string
	err := r.do(ctx, "POST", "/api/users/"+url.PathEscape(uid)+"/relation", string(body), &msg)
	return msg, err
}

func (r *Remote) CheckBlockStatus(ctx context.Context, uid string) (BlockStatus, error) {
	var st BlockStatus
	err := r.do(ctx, "GET", "/api/users/"+url.PathEscape(uid)+"/status", "", &st)
	return st, err
}
