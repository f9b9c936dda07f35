package automation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrNoJSON = errors.New("automation: result contains no JSON object")

// ParseResult turns a callback result into an object. Scenarios either post
// the object itself or the raw model output, which may wrap the object in
// prose or a code fence.
func ParseResult(raw json.RawMessage) (map[string]interface{}, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, ErrNoJSON
	}

	var out map[string]interface{}
	if strings.HasPrefix(s, "{") {
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			return out, nil
		}
	}

	var text string
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal([]byte(s), &text); err != nil {
			return nil, fmt.Errorf("automation: decode result text: %w", err)
		}
	} else {
		text = s
	}
	return ExtractJSON(text)
}

// ExtractJSON decodes the span from the first '{' to the last '}' of s.
func ExtractJSON(s string) (map[string]interface{}, error) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return out, nil
}

var scorePaths = []string{"score", "ats_score", "analysis.score", "match_score"}

// Score reads the 0-100 score from a parsed result, clamping out-of-range
// values. ok is false when no numeric score is present.
func Score(result map[string]interface{}) (score int, ok bool) {
	b, err := json.Marshal(result)
	if err != nil {
		return 0, false
	}
	for _, p := range scorePaths {
		v := gjson.GetBytes(b, p)
		if !v.Exists() {
			continue
		}
		var f float64
		switch v.Type {
		case gjson.Number:
			f = v.Float()
		case gjson.String:
			n := gjson.Parse(strings.TrimSuffix(strings.TrimSpace(v.Str), "%"))
			if n.Type != gjson.Number {
				continue
			}
			f = n.Float()
		default:
			continue
		}
		switch {
		case f < 0:
			f = 0
		case f > 100:
			f = 100
		}
		return int(f + 0.5), true
	}
	return 0, false
}
