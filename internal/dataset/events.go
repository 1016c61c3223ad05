package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Events maps a date key to an arbitrary JSON description.
type Events map[string]json.RawMessage

// ParseDayMonth splits a recurring event key "D-M" / "DD-MM".
func ParseDayMonth(key string) (int, int, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid recurring event key %q: expected DD-MM", key)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("invalid day in recurring event key %q", key)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in recurring event key %q", key)
	}

	return day, month, nil
}

func LoadEvents(path string) (Events, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	var events Events
	if err := json.Unmarshal(content, &events); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	if events == nil {
		events = Events{}
	}

	return events, nil
}

// SaveEvents writes events indented by two spaces, creating the parent
// directory when needed.
func SaveEvents(path string, events Events) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create events directory: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(events); err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	content := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}

	return nil
}
