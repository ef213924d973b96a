package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventStage    EventType = "stage"
	EventLoad     EventType = "load"
	EventDrop     EventType = "drop"
	EventValidate EventType = "validate"
	EventChart    EventType = "chart"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event of a load or report run
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	RunID     string            `json:"run_id,omitempty"`
	Stage     int               `json:"stage,omitempty"`
	Message   string            `json:"message,omitempty"`
	Table     string            `json:"table,omitempty"`
	Rows      int               `json:"rows,omitempty"`
	Line      int               `json:"line,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Path      string            `json:"path,omitempty"`
	Duration  int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates an event log in outputDir. Every event is stamped
// with runID; events below minLevel are discarded.
func NewEventLogger(outputDir string, runID string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	suffix := runID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	filename := fmt.Sprintf("events-%s-%s.jsonl", timestamp, suffix)
	path := filepath.Join(outputDir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    runID,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogStage logs the start of a numbered pipeline stage
func (l *EventLogger) LogStage(step int, message string) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventStage,
		Stage:   step,
		Message: message,
	})
}

// LogTableLoad logs rows appended to a warehouse table
func (l *EventLogger) LogTableLoad(table string, rows int, duration time.Duration) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventLoad,
		Table:    table,
		Rows:     rows,
		Duration: duration.Milliseconds(),
	})
}

// LogDrop logs one source row excluded from the fact table
func (l *EventLogger) LogDrop(line int, reason string) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventDrop,
		Table:  "fact_hiring",
		Line:   line,
		Reason: reason,
	})
}

// LogDropSummary logs the per-reason totals of excluded rows
func (l *EventLogger) LogDropSummary(total int, byReason map[string]int) error {
	extra := make(map[string]string, len(byReason))
	for reason, n := range byReason {
		extra[reason] = fmt.Sprintf("%d", n)
	}

	level := LevelInfo
	if total > 0 {
		level = LevelWarning
	}

	return l.Log(&Event{
		Level: level,
		Event: EventDrop,
		Table: "fact_hiring",
		Rows:  total,
		Extra: extra,
	})
}

// LogValidate logs the final row count of a table
func (l *EventLogger) LogValidate(table string, rows int) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventValidate,
		Table: table,
		Rows:  rows,
	})
}

// LogChart logs a rendered chart
func (l *EventLogger) LogChart(name, path string, rows int, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:   level,
		Event:   EventChart,
		Message: name,
		Path:    path,
		Rows:    rows,
		Error:   errMsg,
	})
}

// LogComplete logs the end of a run
func (l *EventLogger) LogComplete(message string, duration time.Duration) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventComplete,
		Message:  message,
		Duration: duration.Milliseconds(),
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		Path:  path,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
