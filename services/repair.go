package services

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedSynthesis signals model output that could not be recovered
// into JSON. The user should retry with a smaller section of the material.
var ErrMalformedSynthesis = errors.New("the synthesis engine generated a malformed response, please try with a smaller section of the material")

// RepairJSON extracts a JSON object from possibly decorated model output.
// It strips markdown code fences and slices from the first '{' to the last
// '}', which handles leading commentary and trailing truncation artifacts.
// The contract is intentionally narrow: wrapper noise only, no field-by-field
// salvage of broken JSON.
func RepairJSON(raw string) (string, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	firstBrace := strings.Index(cleaned, "{")
	lastBrace := strings.LastIndex(cleaned, "}")
	if firstBrace == -1 || lastBrace == -1 || lastBrace < firstBrace {
		return "", ErrMalformedSynthesis
	}

	return cleaned[firstBrace : lastBrace+1], nil
}

// DecodeRepaired repairs raw model output and unmarshals it into v.
func DecodeRepaired(raw string, v any) error {
	cleaned, err := RepairJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return ErrMalformedSynthesis
	}
	return nil
}
