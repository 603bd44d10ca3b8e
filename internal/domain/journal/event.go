// Package journal parses the line-delimited JSON journal files the game
// writes during play. Each line is one event: a timestamp, a discriminator
// name, and an open-ended payload whose shape depends on the kind.
package journal

import (
	"encoding/json"
	"strings"
	"time"
)

// Event is a single parsed journal line. The payload is kept in full;
// normalization (localization stripping, casing) is the projector's job,
// not the parser's.
type Event struct {
	// Timestamp is the event's ISO-8601 timestamp as written by the game.
	Timestamp string
	// Name is the event discriminator, e.g. "FSDJump".
	Name string
	// Payload holds every field of the line, including timestamp and event.
	Payload map[string]any
	// Raw is the original line as read from disk.
	Raw []byte
}

// Time parses the event timestamp. Returns the zero time if the
// timestamp is malformed.
func (e *Event) Time() time.Time {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Str returns the named payload field as a string, or "" if absent or not
// a string.
func (e *Event) Str(key string) string {
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the named payload field as a float64. JSON numbers decode
// to float64, so this covers every numeric field.
func (e *Event) Float(key string) float64 {
	if v, ok := e.Payload[key].(float64); ok {
		return v
	}
	return 0
}

// Int returns the named payload field truncated to int64.
func (e *Event) Int(key string) int64 {
	return int64(e.Float(key))
}

// Bool returns the named payload field as a bool, or false if absent.
func (e *Event) Bool(key string) bool {
	if v, ok := e.Payload[key].(bool); ok {
		return v
	}
	return false
}

// Has reports whether the payload carries the named field.
func (e *Event) Has(key string) bool {
	_, ok := e.Payload[key]
	return ok
}

// List returns the named payload field as a slice of objects. Non-object
// elements are skipped.
func (e *Event) List(key string) []map[string]any {
	raw, ok := e.Payload[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, el := range raw {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Object returns the named payload field as a nested object, or nil.
func (e *Event) Object(key string) map[string]any {
	if m, ok := e.Payload[key].(map[string]any); ok {
		return m
	}
	return nil
}

// ParseLine parses one journal line into an Event. Returns nil for blank
// lines and lines that are not valid JSON objects; the parser never fails
// hard on malformed input. Unknown event kinds are accepted and carried
// through unchanged.
func ParseLine(line []byte) *Event {
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil
	}

	name, ok := payload["event"].(string)
	if !ok || name == "" {
		return nil
	}
	timestamp, _ := payload["timestamp"].(string)

	return &Event{
		Timestamp: timestamp,
		Name:      name,
		Payload:   payload,
		Raw:       []byte(trimmed),
	}
}

// ParseFile splits a whole journal file on line terminators and parses
// each line, dropping unparseable ones. Source order is preserved.
func ParseFile(content []byte) []*Event {
	lines := strings.Split(string(content), "\n")
	events := make([]*Event, 0, len(lines))
	for _, line := range lines {
		if ev := ParseLine([]byte(line)); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}
