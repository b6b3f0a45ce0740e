package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sw33tLie/biliguard/pkg/loop"
)

type stubService struct {
	release chan struct{}
	calls   int
}

func (s *stubService) wait(ctx context.Context) error {
	s.calls++
	if s.release == nil {
		return nil
	}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubService) FetchBlacklist(ctx context.Context) (Blacklist, error) {
	if err := s.wait(ctx); err != nil {
		return Blacklist{}, err
	}
	return Blacklist{Entries: []BlacklistEntry{{Name: "X", ID: "1"}}}, nil
}

func (s *stubService) FetchUserInfo(ctx context.Context, uid string) (UserInfo, error) {
	if err := s.wait(ctx); err != nil {
		return UserInfo{}, err
	}
	return UserInfo{ID: uid}, nil
}

func (s *stubService) FetchContentInfo(ctx context.Context, bvid string) (ContentInfo, error) {
	if err := s.wait(ctx); err != nil {
		return ContentInfo{}, err
	}
	return ContentInfo{AuthorID: "9"}, nil
}

func (s *stubService) ModifyRelation(ctx context.Context, uid string, action Action) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return "ok " + action.String(), nil
}

func (s *stubService) CheckBlockStatus(ctx context.Context, uid string) (BlockStatus, error) {
	if err := s.wait(ctx); err != nil {
		return BlockStatus{}, err
	}
	return BlockStatus{Blocked: uid == "1"}, nil
}

func settle(t *testing.T, l *loop.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func TestBridgeDeliversOnLoop(t *testing.T) {
	l := loop.New()
	b := NewBridge(&stubService{}, l)

	var status BlockStatus
	var msg string
	b.CheckBlockStatus("1", func(st BlockStatus, err error) {
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
		status = st
	})
	b.ModifyRelation("2", ActionUnblock, func(m string, err error) { msg = m })
	settle(t, l)

	if !status.Blocked || msg != "ok unblock" {
		t.Fatalf("unexpected results %+v %q", status, msg)
	}
}

func TestBridgeClosedBeforeRequest(t *testing.T) {
	l := loop.New()
	svc := &stubService{}
	b := NewBridge(svc, l)
	b.Close()
	b.Close()

	var got error
	b.UserInfo("1", func(_ UserInfo, err error) { got = err })
	settle(t, l)

	if !errors.Is(got, ErrChannelClosed) {
		t.Fatalf("want ErrChannelClosed, got %v", got)
	}
	if svc.calls != 0 {
		t.Fatalf("closed bridge reached the service")
	}
}

func TestBridgeClosedInFlight(t *testing.T) {
	l := loop.New()
	svc := &stubService{release: make(chan struct{})}
	b := NewBridge(svc, l)

	var got error
	done := false
	b.ContentInfo("BV1", func(_ ContentInfo, err error) { got, done = err, true })
	l.RunPending()
	b.Close()
	settle(t, l)

	if !done || !errors.Is(got, ErrChannelClosed) {
		t.Fatalf("want ErrChannelClosed after in-flight close, got %v (done=%v)", got, done)
	}
}

func TestBridgeTimeout(t *testing.T) {
	l := loop.New()
	b := NewBridge(&stubService{release: make(chan struct{})}, l, WithTimeout(10*time.Millisecond))

	var got error
	b.Blacklist(func(_ Blacklist, err error) { got = err })
	settle(t, l)

	if !errors.Is(got, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", got)
	}
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]Action{"block": ActionBlock, " Unblock ": ActionUnblock, "5": ActionBlock} {
		got, err := ParseAction(in)
		if err != nil || got != want {
			t.Fatalf("ParseAction(%q): want %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseAction("mute"); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func bridgeServer(t *testing.T) *httptest.Server {
	t.Helper()
	write := func(w http.ResponseWriter, status int, payload map[string]interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/blacklist", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "u" || pass != "p" {
			write(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "error": "unauthorized"})
			return
		}
		write(w, http.StatusOK, map[string]interface{}{"success": true, "data": Blacklist{Entries: []BlacklistEntry{{Name: "X", ID: "1"}}}})
	})
	mux.HandleFunc("/api/users/42/relation", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"action":"block"}` {
			write(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": fmt.Sprintf("bad body %s", body)})
			return
		}
		write(w, http.StatusOK, map[string]interface{}{"success": true, "data": "操作成功！"})
	})
	mux.HandleFunc("/api/users/42/status", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{"success": true, "data": BlockStatus{Blocked: true}})
	})
	mux.HandleFunc("/api/videos/BV1", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusBadGateway, map[string]interface{}{"success": false, "error": "视频不存在"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote(t *testing.T) {
	srv := bridgeServer(t)
	ctx := context.Background()

	r := NewRemote(srv.URL+"/", "u", "p", nil)
	bl, err := r.FetchBlacklist(ctx)
	if err != nil || len(bl.Entries) != 1 || bl.Entries[0].ID != "1" {
		t.Fatalf("unexpected blacklist %+v, %v", bl, err)
	}

	msg, err := r.ModifyRelation(ctx, "42", ActionBlock)
	if err != nil || msg != "操作成功！" {
		t.Fatalf("unexpected modify result %q, %v", msg, err)
	}

	st, err := r.CheckBlockStatus(ctx, "42")
	if err != nil || !st.Blocked {
		t.Fatalf("unexpected status %+v, %v", st, err)
	}

	if _, err := r.FetchContentInfo(ctx, "BV1"); err == nil || err.Error() != "视频不存在" {
		t.Fatalf("expected bridge error message, got %v", err)
	}

	anon := NewRemote(srv.URL, "", "", nil)
	if _, err := anon.FetchBlacklist(ctx); err == nil || err.Error() != "unauthorized" {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
