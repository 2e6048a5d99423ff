package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	reJSONStart    = regexp.MustCompile(`^\s*[\{\[]`)
	reCodeFence    = regexp.MustCompile("^\\s*```")
	reEmbeddedJSON = regexp.MustCompile(`\[\s*\{[\s\S]*\}\s*\]`)
	reJSONArray    = regexp.MustCompile(`\[[\s\S]*\]`)
	reJSONObject   = regexp.MustCompile(`\{[\s\S]*\}`)
)

// looksLikeJSON reports whether the output plausibly carries a JSON payload:
// it starts with a brace or bracket, opens a fenced code block, or embeds an
// array of objects somewhere in the text.
func looksLikeJSON(output string) bool {
	trimmed := strings.TrimSpace(output)
	return reJSONStart.MatchString(trimmed) ||
		reCodeFence.MatchString(trimmed) ||
		reEmbeddedJSON.MatchString(trimmed)
}

func stripCodeFences(output string) string {
	return strings.TrimSpace(
		strings.ReplaceAll(strings.ReplaceAll(output, "```json", ""), "```", ""),
	)
}

// extractJSON strips code-fence markers and cuts out the first array span,
// falling back to the first object span. The caller decides how to decode it.
func extractJSON(output string) string {
	jsonStr := stripCodeFences(output)
	if m := reJSONArray.FindString(jsonStr); m != "" {
		return m
	}
	if m := reJSONObject.FindString(jsonStr); m != "" {
		return m
	}
	return jsonStr
}

// extractObjectJSON prefers the object span over the array span. Payloads
// that are a single object with array fields would otherwise lose their
// enclosing braces to the array match.
func extractObjectJSON(output string) string {
	jsonStr := stripCodeFences(output)
	if m := reJSONObject.FindString(jsonStr); m != "" {
		return m
	}
	if m := reJSONArray.FindString(jsonStr); m != "" {
		return m
	}
	return jsonStr
}

// decodeJSON extracts and strictly decodes the JSON span into v.
func decodeJSON(output string, v any) error {
	return json.Unmarshal([]byte(extractJSON(output)), v)
}

// decodeObjectJSON decodes the object-first span into v.
func decodeObjectJSON(output string, v any) error {
	return json.Unmarshal([]byte(extractObjectJSON(output)), v)
}
