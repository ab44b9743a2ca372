package extraction

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// parseTupleResponse decodes model output into tuples, tolerating the
// shapes models actually produce: fenced code blocks, a bare object, a
// {"tuples": [...]} wrapper, or prose wrapped around the JSON.
func parseTupleResponse(content string) ([]Tuple, error) {
	content = stripFences(strings.TrimSpace(content))

	if tuples, err := decodeTuples(content); err == nil {
		return tuples, nil
	}

	// Cut out the outermost array, then the outermost object.
	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start != -1 && end > start {
		if tuples, err := decodeTuples(content[start : end+1]); err == nil {
			return tuples, nil
		}
	}
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start != -1 && end > start {
		if tuples, err := decodeTuples(content[start : end+1]); err == nil {
			return tuples, nil
		}
	}
	return nil, errors.Errorf("no tuple JSON found in model response (%d bytes)", len(content))
}

func decodeTuples(content string) ([]Tuple, error) {
	var tuples []Tuple
	if err := json.Unmarshal([]byte(content), &tuples); err == nil {
		return normalizeTuples(tuples), nil
	}

	// A single object is either a {"tuples": [...]} wrapper or one
	// tuple on its own.
	var wrapper struct {
		Tuples []Tuple `json:"tuples"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err == nil && wrapper.Tuples != nil {
		return normalizeTuples(wrapper.Tuples), nil
	}
	var single Tuple
	if err := json.Unmarshal([]byte(content), &single); err != nil {
		return nil, errors.Wrap(err, "not tuple-shaped JSON")
	}
	return normalizeTuples([]Tuple{single}), nil
}

func normalizeTuples(tuples []Tuple) []Tuple {
	for i := range tuples {
		tuples[i].Normalize()
	}
	return tuples
}

func stripFences(content string) string {
	if i := strings.Index(content, "```json"); i != -1 {
		content = content[i+len("```json"):]
		if j := strings.Index(content, "```"); j != -1 {
			content = content[:j]
		}
	} else if strings.Contains(content, "```") {
		parts := strings.SplitN(content, "```", 3)
		if len(parts) >= 2 {
			content = parts[1]
		}
	}
	return strings.TrimSpace(content)
}
