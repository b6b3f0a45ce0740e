package bilibili

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, csrf string, routes map[string]http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{SESSDATA: "sess", CSRF: csrf, BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func TestFetchBlacklist(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/relation/blacks": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Cookie") != "SESSDATA=sess" {
				t.Errorf("unexpected cookie header %q", r.Header.Get("Cookie"))
			}
			fmt.Fprint(w, `{"code":0,"data":{"list":[{"uname":"X","mid":1},{"uname":"Y","mid":22}],"total":2}}`)
		},
	})

	bl, err := c.FetchBlacklist(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []enrich.BlacklistEntry{{Name: "X", ID: "1"}, {Name: "Y", ID: "22"}}
	if bl.Code != 0 || !reflect.DeepEqual(bl.Entries, want) {
		t.Fatalf("want %v, got %+v", want, bl)
	}
}

func TestFetchBlacklistNotLoggedIn(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/relation/blacks": jsonBody(`{"code":-101,"message":"账号未登录"}`),
	})
	bl, err := c.FetchBlacklist(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if bl.Code != CODE_NOT_AUTHORIZED || len(bl.Entries) != 0 {
		t.Fatalf("unexpected result %+v", bl)
	}
}

func TestFetchBlacklistHTTPError(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/relation/blacks": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	if _, err := c.FetchBlacklist(context.Background()); err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
}

func TestFetchContentInfo(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/web-interface/view/detail": jsonBody(`{"code":0,"data":{
			"View":{"cid":77,"owner":{"mid":42,"name":"up"}},
			"Tags":[{"tag_name":"游戏"},{"tag_name":"测试"}]}}`),
		"/x/web-interface/view/conclusion/get": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("cid") != "77" || r.URL.Query().Get("up_mid") != "42" {
				t.Errorf("unexpected summary query %s", r.URL.RawQuery)
			}
			fmt.Fprint(w, `{"code":0,"data":{"model_result":{"summary":"**short**"}}}`)
		},
	})

	info, err := c.FetchContentInfo(context.Background(), "BV1xx411c7mD")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := enrich.ContentInfo{Tags: []string{"游戏", "测试"}, AISummary: "**short**", AuthorID: "42", AuthorName: "up"}
	if !reflect.DeepEqual(info, want) {
		t.Fatalf("want %+v, got %+v", want, info)
	}
}

func TestFetchContentInfoAPIError(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/web-interface/view/detail": jsonBody(`{"code":-404,"message":"啥都木有"}`),
	})
	_, err := c.FetchContentInfo(context.Background(), "BV1")
	if err == nil || err.Error() != "啥都木有" {
		t.Fatalf("expected API message as error, got %v", err)
	}
}

func TestFetchContentInfoWithoutSummary(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/web-interface/view/detail":         jsonBody(`{"code":0,"data":{"View":{"cid":1,"owner":{"mid":5,"name":"n"}}}}`),
		"/x/web-interface/view/conclusion/get": jsonBody(`{"code":-1}`),
	})
	info, err := c.FetchContentInfo(context.Background(), "BV1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if info.AISummary != "" || len(info.Tags) != 0 || info.AuthorID != "5" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestCheckBlockStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
		want enrich.BlockStatus
	}{
		{"blocked", `{"code":0,"data":{"attribute":128}}`, enrich.BlockStatus{Blocked: true}},
		{"following", `{"code":0,"data":{"attribute":2}}`, enrich.BlockStatus{Blocked: false}},
		{"ambiguous", `{"code":-400,"message":"请求错误"}`, enrich.BlockStatus{Blocked: false, Note: "请求错误"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "", map[string]http.HandlerFunc{"/x/relation/stat": jsonBody(tt.body)})
			got, err := c.CheckBlockStatus(context.Background(), "42")
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if got != tt.want {
				t.Fatalf("want %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestModifyRelation(t *testing.T) {
	var form string
	c := newTestClient(t, "tok", map[string]http.HandlerFunc{
		"/x/relation/modify": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			form = r.PostForm.Encode()
			fmt.Fprint(w, `{"code":0}`)
		},
	})

	msg, err := c.ModifyRelation(context.Background(), "42", enrich.ActionBlock)
	if err != nil || msg != MODIFY_OK_MESSAGE {
		t.Fatalf("unexpected result %q, %v", msg, err)
	}
	if form != "act=5&csrf=tok&fid=42&re_src=11" {
		t.Fatalf("unexpected form %q", form)
	}
}

func TestModifyRelationFailures(t *testing.T) {
	c := newTestClient(t, "", nil)
	if _, err := c.ModifyRelation(context.Background(), "42", enrich.ActionBlock); !errors.Is(err, ErrMissingCSRF) {
		t.Fatalf("expected ErrMissingCSRF, got %v", err)
	}

	c = newTestClient(t, "tok", map[string]http.HandlerFunc{
		"/x/relation/modify": jsonBody(`{"code":22120,"message":"重复拉黑"}`),
	})
	if _, err := c.ModifyRelation(context.Background(), "42", enrich.ActionBlock); err == nil || err.Error() != "重复拉黑" {
		t.Fatalf("expected API message, got %v", err)
	}

	c = newTestClient(t, "tok", map[string]http.HandlerFunc{
		"/x/relation/modify": jsonBody(`{"code":1}`),
	})
	if _, err := c.ModifyRelation(context.Background(), "42", enrich.ActionUnblock); err == nil || err.Error() != MODIFY_FAIL_MESSAGE {
		t.Fatalf("expected default failure message, got %v", err)
	}
}

func TestFetchUserInfo(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/relation/stat": jsonBody(`{"code":0,"data":{"follower":1234}}`),
		"/x/space/navnum":  jsonBody(`{"code":0,"data":{"video":9}}`),
		"/x/space/arc/search": jsonBody(`{"code":0,"data":{"page":{"count":3},"list":{"vlist":[
			{"length":"01:30","title":"原神 攻略","description":"","tname":"游戏"},
			{"length":"02:30","title":"原神 实况","description":"的","tname":"游戏"}]}}}`),
	})

	info, err := c.FetchUserInfo(context.Background(), "42")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if info.ID != "42" || info.Followers != 1234 || info.ContentCount != 9 || info.AvgDuration != "02:00" {
		t.Fatalf("unexpected info %+v", info)
	}
	wantCloud := []enrich.WordCount{{Word: "原神", Count: 2}, {Word: "游戏", Count: 2}, {Word: "攻略", Count: 1}, {Word: "实况", Count: 1}}
	if !reflect.DeepEqual(info.KeywordCloud, wantCloud) {
		t.Fatalf("want cloud %v, got %v", wantCloud, info.KeywordCloud)
	}
}

func TestFetchUserInfoToleratesMissingVideos(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/relation/stat":    jsonBody(`{"code":0,"data":{"follower":1}}`),
		"/x/space/navnum":     jsonBody(`{"code":-1}`),
		"/x/space/arc/search": jsonBody(`{"code":-352,"message":"风控校验失败"}`),
	})
	info, err := c.FetchUserInfo(context.Background(), "7")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if info.ContentCount != 0 || info.AvgDuration != "N/A" || len(info.KeywordCloud) != 0 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestFetchUserInfoStatsFailure(t *testing.T) {
	c := newTestClient(t, "", map[string]http.HandlerFunc{
		"/x/relation/stat": jsonBody(`{"code":-400,"message":"bad"}`),
	})
	if _, err := c.FetchUserInfo(context.Background(), "7"); err == nil {
		t.Fatalf("expected stats failure to fail the lookup")
	}
}

func TestWordCloud(t *testing.T) {
	got := WordCloud("Go go Go 的 bilibili BILIBILI 哔哩哔哩 a 测试 测试")
	want := []enrich.WordCount{{Word: "Go", Count: 2}, {Word: "测试", Count: 2}, {Word: "go", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestParseLengthAndFormat(t *testing.T) {
	if got := ParseLength(gjson.Parse(`"1:02:03"`)); got != 3723 {
		t.Fatalf("unexpected seconds %d", got)
	}
	if got := ParseLength(gjson.Parse(`95`)); got != 95 {
		t.Fatalf("unexpected seconds %d", got)
	}
	if got := FormatDuration(95); got != "01:35" {
		t.Fatalf("unexpected format %q", got)
	}
}
