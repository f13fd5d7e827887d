package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseAIJSON decodes a JSON object from raw model output. Models wrap their
// JSON in markdown fences, prose, or emit slightly broken syntax, so parsing
// is attempted in stages:
//  1. the input as-is
//  2. the contents of a ```json fence
//  3. the first balanced {...} object found in the text
//  4. the input after sanitizing common model mistakes
func ParseAIJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty model output")
	}

	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	if fenced := extractFenced(input); fenced != "" {
		if err := json.Unmarshal([]byte(fenced), target); err == nil {
			return nil
		}
	}

	if obj := extractObject(input); obj != "" {
		if err := json.Unmarshal([]byte(obj), target); err == nil {
			return nil
		}
		if err := json.Unmarshal([]byte(sanitizeJSON(obj)), target); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(sanitizeJSON(input)), target); err == nil {
		return nil
	}

	return fmt.Errorf("no parseable JSON object in model output: %s", truncate(input, 100))
}

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	bareFenceRe = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
)

// extractFenced pulls the body out of a markdown code fence
func extractFenced(input string) string {
	if m := jsonFenceRe.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := bareFenceRe.FindStringSubmatch(input); len(m) > 1 {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") {
			return body
		}
	}
	return ""
}

// extractObject returns the first balanced top-level JSON object in the input,
// respecting string literals and escapes
func extractObject(input string) string {
	depth := 0
	inString := false
	escaped := false
	start := -1

	for i, ch := range input {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case ch == '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// sanitizeJSON repairs the JSON mistakes models make most often: trailing
// commas, unquoted keys, single-quoted strings, stray control characters
func sanitizeJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\uFEFF")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = requoteSingles(s)
	s = controlCharRe.ReplaceAllString(s, "")
	return s
}

// requoteSingles converts single-quoted strings to double-quoted ones,
// leaving apostrophes inside double-quoted strings alone
func requoteSingles(input string) string {
	var out strings.Builder
	inDouble := false
	inSingle := false
	escaped := false

	for _, ch := range input {
		if escaped {
			out.WriteRune(ch)
			escaped = false
			continue
		}
		switch {
		case ch == '\\':
			escaped = true
			out.WriteRune(ch)
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			out.WriteRune(ch)
		case ch == '"' && inSingle:
			out.WriteString(`\"`)
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			out.WriteRune('"')
		default:
			out.WriteRune(ch)
		}
	}
	return out.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
