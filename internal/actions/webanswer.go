package actions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// WebAnswer answers a digression from a configured web page: fetch, extract
// the readable content, sanitize, and reply with a short excerpt. Used as a
// chitchat action so FAQ-style interruptions get a real answer before the
// plan re-asks its question.
type WebAnswer struct {
	name      string
	url       string
	UserAgent string
	MaxChars  int
	Client    *http.Client

	// render is the fallback for pages that serve no static content; see
	// render.go. Nil disables the fallback.
	render renderFunc
}

type renderFunc func(ctx context.Context, pageURL string) (string, error)

func NewWebAnswer(name, pageURL string) *WebAnswer {
	return &WebAnswer{
		name:      name,
		url:       pageURL,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		MaxChars:  600,
		Client:    &http.Client{Timeout: 30 * time.Second},
		render:    renderPage,
	}
}

func (w *WebAnswer) Name() string {
	return w.name
}

func (w *WebAnswer) Execute(ctx context.Context, conv *Conversation) (string, error) {
	body, err := w.fetch(ctx)
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(w.url)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %v", err)
	}

	article, err := readability.FromReader(strings.NewReader(body), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %v", err)
	}

	// Sanitize output (remove any remaining HTML tags or scripts)
	p := bluemonday.StrictPolicy()
	content := strings.TrimSpace(p.Sanitize(article.TextContent))

	// Some pages only materialize content in the browser; retry through the
	// headless renderer before giving up.
	if content == "" && w.render != nil {
		rendered, rerr := w.render(ctx, w.url)
		if rerr != nil {
			return "", fmt.Errorf("page has no static content and rendering failed: %v", rerr)
		}
		article, err = readability.FromReader(strings.NewReader(rendered), parsedURL)
		if err != nil {
			return "", fmt.Errorf("failed to parse rendered article: %v", err)
		}
		content = strings.TrimSpace(p.Sanitize(article.TextContent))
	}

	if runes := []rune(content); len(runes) > w.MaxChars {
		content = string(runes[:w.MaxChars]) + "…"
	}
	if article.Title != "" {
		return fmt.Sprintf("%s\n%s", article.Title, content), nil
	}
	return content, nil
}

func (w *WebAnswer) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", w.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", w.UserAgent)

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, io.LimitReader(resp.Body, 2<<20)); err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}
	return sb.String(), nil
}
