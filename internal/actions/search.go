package actions

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

// Search answers a digression by searching the web for the user's last
// message. A chitchat action for questions no canned utterance covers.
type Search struct {
	name   string
	client *duckduckgo.Tool
}

func NewSearch(name string) (*Search, error) {
	ddg, err := duckduckgo.New(5, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &Search{name: name, client: ddg}, nil
}

func (s *Search) Name() string {
	return s.name
}

func (s *Search) Execute(ctx context.Context, conv *Conversation) (string, error) {
	query := conv.Tracker.LatestText()
	if query == "" {
		return "I didn't catch what you wanted me to look up.", nil
	}
	res, err := s.client.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	return res, nil
}
