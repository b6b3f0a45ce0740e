package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const page = `<html><head><title>t</title></head><body><a id="u" href="//space.bilibili.com/1">x</a></body></html>`

func TestLoadDocumentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := loadDocument(augmentCmd, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.GetElementByID("u") == nil {
		t.Fatalf("username link missing from parsed page")
	}
}

func TestLoadDocumentFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	doc, err := loadDocument(augmentCmd, srv.URL+"/page")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.GetElementByID("u") == nil {
		t.Fatalf("username link missing from fetched page")
	}

	if _, err := loadDocument(augmentCmd, srv.URL+"/missing"); err == nil {
		t.Fatalf("expected an error for a 404 page")
	}
}
