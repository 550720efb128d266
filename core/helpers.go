package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func readString(values map[string]any, keys ...string) string {
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		value, ok := values[key]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(typed); trimmed != "" {
				return trimmed
			}
		case fmt.Stringer:
			if trimmed := strings.TrimSpace(typed.String()); trimmed != "" {
				return trimmed
			}
		case json.Number:
			return typed.String()
		case float64, float32, int, int64, int32, bool:
			return fmt.Sprint(typed)
		}
	}
	return ""
}

// readRawString keeps surrounding whitespace so user input such as a search
// query reaches the API exactly as typed.
func readRawString(values map[string]any, key string) string {
	value, ok := values[key]
	if !ok || value == nil {
		return ""
	}
	if typed, ok := value.(string); ok {
		return typed
	}
	return fmt.Sprint(value)
}

func readInt(values map[string]any, keys ...string) int {
	for _, key := range keys {
		if parsed, ok := toInt(values[key]); ok {
			return parsed
		}
	}
	return 0
}

func readOptionalInt(values map[string]any, key string) (*int, error) {
	value, ok := values[key]
	if !ok || value == nil {
		return nil, nil
	}
	if text, isText := value.(string); isText && strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parsed, ok := toInt(value)
	if !ok {
		return nil, NewValidationError(key, fmt.Sprintf("%s must be an integer", key))
	}
	return &parsed, nil
}

func readOptionalBool(values map[string]any, key string) (*bool, error) {
	value, ok := values[key]
	if !ok || value == nil {
		return nil, nil
	}
	switch typed := value.(type) {
	case bool:
		return &typed, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return nil, NewValidationError(key, fmt.Sprintf("%s must be a boolean", key))
		}
		return &parsed, nil
	default:
		return nil, NewValidationError(key, fmt.Sprintf("%s must be a boolean", key))
	}
}

func readMap(values map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if typed, ok := values[key].(map[string]any); ok {
			return typed
		}
	}
	return nil
}

func toInt(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int32:
		return int(typed), true
	case int64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case float32:
		if float64(typed) != math.Trunc(float64(typed)) {
			return 0, false
		}
		return int(typed), true
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
