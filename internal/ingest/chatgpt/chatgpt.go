// Package chatgpt converts chat-assistant responses into authoring JSON.
//
// Three layouts are recognized: a "JSON:" section holding an authoring
// object, the structured BLOCK/DAY/Exercise layout, and the human-readable
// Title/Exercises layout. Every parser returns authoring JSON bytes that the
// normalizer accepts, tagged with source "ai".
package chatgpt

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format names the layout a response was parsed from.
type Format string

const (
	FormatJSON          Format = "chat_json"
	FormatStructured    Format = "chat_structured"
	FormatHumanReadable Format = "chat_human_readable"
)

var (
	ErrNoJSONSection = errors.New("no JSON section found (missing 'JSON:' marker)")
	ErrNoJSONObject  = errors.New("JSON section has no object")
	ErrMissingTitle  = errors.New("title is missing")
	ErrNoDays        = errors.New("no days found")
)

var firstNumberRe = regexp.MustCompile(`\d+`)

// Convert picks the layout of a chat response and returns authoring JSON.
// A "JSON:" section wins over the text layouts; a BLOCK: header selects the
// structured layout.
func Convert(text string) ([]byte, Format, error) {
	if hasLinePrefix(text, "JSON:") {
		raw, err := ExtractJSON(text)
		if err != nil {
			return nil, FormatJSON, err
		}
		data, err := markAI(raw)
		return data, FormatJSON, err
	}
	if hasLinePrefix(text, "BLOCK:") {
		data, err := ParseStructured(text)
		return data, FormatStructured, err
	}
	data, err := ParseHumanReadable(text)
	return data, FormatHumanReadable, err
}

// ExtractJSON returns the JSON object following the first line that starts
// with "JSON:". The object runs from the first '{' to its matching brace,
// or to the end of the text when the braces never balance.
func ExtractJSON(text string) ([]byte, error) {
	start := -1
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "JSON:") {
			start = offset
			break
		}
		offset += len(line)
	}
	if start < 0 {
		return nil, ErrNoJSONSection
	}

	rest := text[start:]
	brace := strings.IndexByte(rest, '{')
	if brace < 0 {
		return nil, ErrNoJSONObject
	}
	rest = rest[brace:]

	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(rest[:i+1]), nil
			}
		}
	}
	return []byte(rest), nil
}

// markAI sets Source to "ai" on an authoring object that does not name one.
func markAI(data []byte) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		// Leave malformed input for the normalizer to report with a path.
		return data, nil
	}
	if _, ok := obj["Source"]; ok {
		return data, nil
	}
	obj["Source"] = json.RawMessage(`"ai"`)
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding authoring block: %w", err)
	}
	return out, nil
}

func hasLinePrefix(text, prefix string) bool {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.HasPrefix(strings.TrimSpace(sc.Text()), prefix) {
			return true
		}
	}
	return false
}

// value returns the trimmed text after prefix.
func value(line, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}

// firstNumber returns the first run of digits in s, or 0.
func firstNumber(s string) int {
	n, _ := strconv.Atoi(firstNumberRe.FindString(s))
	return n
}

func lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		out = append(out, strings.TrimSpace(l))
	}
	return out
}
