package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/letmevibethatforyou/sitesearch/internal/config"
	"github.com/letmevibethatforyou/sitesearch/internal/staging"
	"github.com/letmevibethatforyou/sitesearch/inmemory"
	"github.com/letmevibethatforyou/sitesearch/urlstate"
)

func newTestSession(t *testing.T, pageURL string, docs int) (*session, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	searcher := inmemory.New()
	for i := 0; i < docs; i++ {
		searcher.AddDocument(inmemory.Document{
			ID:           fmt.Sprintf("doc-%02d", i),
			Title:        fmt.Sprintf("Engine %02d", i),
			URL:          fmt.Sprintf("/engines/%02d", i),
			LastModified: fmt.Sprintf("2024-01-%02d", i%28+1),
			Tags:         []string{"engine"},
			Category:     "powertrain",
		})
	}

	srv := httptest.NewServer(staging.NewHandler(searcher).Router())
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Widget.PushHistory = true

	out := &bytes.Buffer{}
	s, err := newSession(cfg, pageURL, srv.URL+"/search", http.DefaultClient, out)
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	return s, out
}

func TestSessionRun(t *testing.T) {
	s, out := newTestSession(t, "https://www.example.com/search?q=engine", 30)

	input := strings.Join([]string{
		"next",
		"next",
		"sort title",
		"sort price",
		"back",
		"search nothing-matches",
		"bogus",
		"quit",
	}, "\n")

	if err := s.run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Engine 00",
		"26-30 of 30",
		`unknown sort "price"`,
		`No results found for "nothing-matches"`,
		`unknown command "bogus"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q\n%s", want, text)
		}
	}

	if got, _ := s.location.ReadParam(urlstate.ParamQuery); got != "nothing-matches" {
		t.Errorf("Expected q=nothing-matches, got %q", got)
	}
	if s.history.Len() < 4 {
		t.Errorf("Expected pushed history entries, got %d", s.history.Len())
	}
}

func TestSessionBackRestoresState(t *testing.T) {
	s, _ := newTestSession(t, "https://www.example.com/search?q=engine", 30)
	ctx := context.Background()

	if err := s.widget.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, line := range []string{"next", "back"} {
		if _, err := s.exec(ctx, line); err != nil {
			t.Fatalf("exec %q failed: %v", line, err)
		}
	}

	if s.widget.State().Offset != 0 {
		t.Errorf("Expected offset 0 after back, got %d", s.widget.State().Offset)
	}
	if snap := s.recorder.Snapshot(); snap.Range != "1-25" {
		t.Errorf("Expected range 1-25, got %q", snap.Range)
	}

	if _, err := s.exec(ctx, "forward"); err != nil {
		t.Fatalf("exec forward failed: %v", err)
	}
	if s.widget.State().Offset != 1 {
		t.Errorf("Expected offset 1 after forward, got %d", s.widget.State().Offset)
	}
}

func TestSessionPrevOnFirstPage(t *testing.T) {
	s, out := newTestSession(t, "https://www.example.com/search?q=engine", 3)
	ctx := context.Background()

	if err := s.widget.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := s.exec(ctx, "prev"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if !strings.Contains(out.String(), "no page in that direction") {
		t.Errorf("Expected disabled notice, got %s", out.String())
	}
}

func TestSessionNetworkError(t *testing.T) {
	out := &bytes.Buffer{}
	s, err := newSession(config.Default(), "https://www.example.com/search?q=engine", "http://127.0.0.1:1/search", http.DefaultClient, out)
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}

	if err := s.run(context.Background(), strings.NewReader("quit\n")); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "NetworkError") {
		t.Errorf("Expected a network error notice, got %s", out.String())
	}
}
