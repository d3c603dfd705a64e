package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeTurn      EventType = "turn"
	EventTypeIntent    EventType = "intent"
	EventTypeAction    EventType = "action"
	EventTypePlan      EventType = "plan"
	EventTypeGuardrail EventType = "guardrail"
	EventTypeSweep     EventType = "sweep"
	EventTypeHeartbeat EventType = "heartbeat"
	EventTypeLLM       EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	ChatID    string    `json:"chat_id,omitempty"`
	Plan      string    `json:"plan,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	dialogueLogPath string
	maxSize         int64
}

func NewLogger() *Logger {
	return NewLoggerAt(filepath.Join("logs", "dialogue.jsonl"))
}

// NewLoggerAt writes the dialogue log to the given path instead of ./logs.
func NewLoggerAt(path string) *Logger {
	return &Logger{
		dialogueLogPath: path,
		maxSize:         10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeIntent || evt.Type == EventTypeAction || evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.dialogueLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.dialogueLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.dialogueLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.dialogueLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.dialogueLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogIntent(chatID, text, intent string) {
	l.Log(Event{
		Type:   EventTypeIntent,
		ChatID: chatID,
		Data: map[string]string{
			"text":   text,
			"intent": intent,
		},
	})
}

func (l *Logger) LogAction(chatID, action, reply string) {
	l.Log(Event{
		Type:   EventTypeAction,
		ChatID: chatID,
		Data: map[string]string{
			"action": action,
			"reply":  reply,
		},
	})
}

func (l *Logger) LogPlan(chatID, planName, transition string) {
	l.Log(Event{
		Type:   EventTypePlan,
		ChatID: chatID,
		Plan:   planName,
		Data:   map[string]string{"transition": transition},
	})
}

func (l *Logger) LogGuardrail(chatID, slot, reason string) {
	l.Log(Event{
		Type:   EventTypeGuardrail,
		ChatID: chatID,
		Data: map[string]string{
			"slot":   slot,
			"reason": reason,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}
