package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Result is the classifier's verdict on one user utterance: the recognized
// intent plus any slot values found in the text.
type Result struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
}

// Classifier turns a raw utterance into an intent and entity set. The plan
// engine consumes only the result; how classification happens is this
// package's business.
type Classifier interface {
	Classify(ctx context.Context, utterance string, intents, slots []string) (Result, error)
}

// LLMClassifier classifies with a chat model: one completion per utterance,
// constrained to the candidate intents and slot names of the loaded plans.
type LLMClassifier struct {
	Model llms.Model
}

func NewLLMClassifier(model llms.Model) *LLMClassifier {
	return &LLMClassifier{Model: model}
}

const classifierDirective = `You are an intent classifier for a slot-filling assistant.
Given the user message, respond with ONLY a JSON object, no prose:
{"intent": "<one of the candidate intents, or \"inform\" when the message just answers a question>",
 "entities": {"<slot_name>": "<value>"}}
Only use slot names from the candidate list. Omit entities you are not sure about.`

func (c *LLMClassifier) Classify(ctx context.Context, utterance string, intents, slots []string) (Result, error) {
	system := fmt.Sprintf("%s\n\nCandidate intents: %s\nCandidate slots: %s",
		classifierDirective,
		strings.Join(intents, ", "),
		strings.Join(slots, ", "))

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(utterance)},
		},
	}

	resp, err := c.Model.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return Result{}, fmt.Errorf("nlu: classification call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("nlu: classifier returned no choices")
	}

	return parseResult(resp.Choices[0].Content)
}

// parseResult extracts the JSON object from the model output, tolerating
// fenced or prefixed responses.
func parseResult(content string) (Result, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Result{}, fmt.Errorf("nlu: no JSON object in classifier output: %q", content)
	}

	var res Result
	if err := json.Unmarshal([]byte(content[start:end+1]), &res); err != nil {
		return Result{}, fmt.Errorf("nlu: parse classifier output: %w", err)
	}
	if res.Intent == "" {
		return Result{}, fmt.Errorf("nlu: classifier output has no intent: %q", content)
	}
	if res.Entities == nil {
		res.Entities = map[string]string{}
	}
	return res, nil
}
