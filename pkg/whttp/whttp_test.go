package whttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendHTTPRequestBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			w.Write([]byte("none"))
			return
		}
		w.Write([]byte(user + ":" + pass))
	}))
	defer srv.Close()

	client, err := NewClient("", 5*time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	tests := []struct {
		name       string
		user, pass string
		want       string
	}{
		{"credentials", "u", "p", "u:p"},
		{"password only", "", "p", ":p"},
		{"no credentials", "", "", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SendHTTPRequest(context.Background(), &WHTTPReq{
				Method:        "GET",
				URL:           srv.URL,
				BasicAuthUser: tt.user,
				BasicAuthPass: tt.pass,
			}, client)
			if err != nil {
				t.Fatalf("send: %v", err)
			}
			if res.BodyString != tt.want {
				t.Fatalf("want %q, got %q", tt.want, res.BodyString)
			}
		})
	}
}
