package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWebAnswer_ExtractsReadableContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Baggage rules</title></head><body>
			<article><h1>Baggage rules</h1>
			<p>Each passenger may carry one cabin bag up to seven kilograms.
			Checked baggage allowances depend on the fare class booked.</p>
			<script>window.tracker()</script>
			</article></body></html>`))
	}))
	defer srv.Close()

	w := NewWebAnswer("utter_chitchat_baggage", srv.URL)
	w.render = nil // no headless fallback in tests

	got, err := w.Execute(context.Background(), testConv(t))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(got, "cabin bag") {
		t.Errorf("expected article content, got %q", got)
	}
	if strings.Contains(got, "window.tracker") {
		t.Errorf("script content must be stripped, got %q", got)
	}
}

func TestWebAnswer_TruncatesOnRuneBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Routes</title></head><body><article>
			<h1>Routes</h1><p>` + strings.Repeat("दिल्ली से गोवा तक की उड़ानें रोज़ चलती हैं। ", 40) + `</p>
			</article></body></html>`))
	}))
	defer srv.Close()

	w := NewWebAnswer("utter_chitchat_routes", srv.URL)
	w.render = nil
	w.MaxChars = 25

	got, err := w.Execute(context.Background(), testConv(t))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune, got %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated reply should end with an ellipsis, got %q", got)
	}
}

func TestWebAnswer_FailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	w := NewWebAnswer("utter_chitchat_baggage", srv.URL)
	w.render = nil

	if _, err := w.Execute(context.Background(), testConv(t)); err == nil {
		t.Error("expected an error for non-200 response")
	}
}
