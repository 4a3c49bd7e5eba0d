package upstream

import (
	"bytes"
	"encoding/json"
)

// FirstError picks the message to show for an upstream rejection. It
// understands allauth's {"errors":[{"message":...}]} envelope and falls back
// to the first key of a field-error object, taking that key's first message.
func FirstError(body []byte) string {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, e := range envelope.Errors {
			if e.Message != "" {
				return e.Message
			}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return ""
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return ""
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return ""
		}
		if msg := firstMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func firstMessage(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	return ""
}
