package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

const wrappedValueKey = "value"

// NormalizeResponse flattens a leak API body into output records. A page
// envelope yields one record per content element, each carrying the page
// metadata under MetadataKey. Any other object is returned as a single
// record. Numbers are kept as json.Number so values pass through unchanged.
func NormalizeResponse(body []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, NewEmptyResponseError(nil)
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, NewAPIError(nil, "Response body is not valid JSON", 0, map[string]any{
			"body": truncateBody(trimmed),
		})
	}

	result := gjson.ParseBytes(trimmed)
	if result.IsObject() && result.Get("content").IsArray() {
		envelope, err := decodePageEnvelope(result)
		if err != nil {
			return nil, err
		}
		return flattenPage(envelope), nil
	}

	decoded, err := decodeJSON(result.Raw)
	if err != nil {
		return nil, err
	}
	if object, ok := decoded.(map[string]any); ok {
		return []map[string]any{object}, nil
	}
	return []map[string]any{{wrappedValueKey: decoded}}, nil
}

// DecodePageEnvelope returns the envelope when body is a page response.
func DecodePageEnvelope(body []byte) (PageEnvelope, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if !gjson.ValidBytes(trimmed) {
		return PageEnvelope{}, false, nil
	}
	result := gjson.ParseBytes(trimmed)
	if !result.IsObject() || !result.Get("content").IsArray() {
		return PageEnvelope{}, false, nil
	}
	envelope, err := decodePageEnvelope(result)
	if err != nil {
		return PageEnvelope{}, false, err
	}
	return envelope, true, nil
}

func decodePageEnvelope(result gjson.Result) (PageEnvelope, error) {
	envelope := PageEnvelope{}
	var decodeErr error
	result.Get("content").ForEach(func(_, element gjson.Result) bool {
		value, err := decodeJSON(element.Raw)
		if err != nil {
			decodeErr = err
			return false
		}
		envelope.Content = append(envelope.Content, value)
		return true
	})
	if decodeErr != nil {
		return PageEnvelope{}, decodeErr
	}

	fields := map[string]*any{
		"totalElements": &envelope.TotalElements,
		"totalPages":    &envelope.TotalPages,
		"number":        &envelope.Number,
		"size":          &envelope.Size,
	}
	for key, target := range fields {
		field := result.Get(key)
		if !field.Exists() {
			continue
		}
		value, err := decodeJSON(field.Raw)
		if err != nil {
			return PageEnvelope{}, err
		}
		*target = value
	}
	return envelope, nil
}

func flattenPage(envelope PageEnvelope) []map[string]any {
	metadata := envelope.Metadata()
	records := make([]map[string]any, 0, len(envelope.Content))
	for _, element := range envelope.Content {
		record, ok := element.(map[string]any)
		if ok {
			record = copyAnyMap(record)
		} else {
			record = map[string]any{wrappedValueKey: element}
		}
		record[MetadataKey] = metadata.Map()
		records = append(records, record)
	}
	return records
}

func decodeJSON(raw string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, NewAPIError(err, "Response body could not be decoded", 0, nil)
	}
	return value, nil
}

const maxErrorBodyLength = 512

func truncateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	runes := []rune(text)
	if len(runes) <= maxErrorBodyLength {
		return text
	}
	return string(runes[:maxErrorBodyLength]) + "..."
}
