package llm

import (
	"regexp"
	"strings"
)

var codeBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON cleans model output to extract the JSON payload. Models wrap
// JSON in markdown code fences or prose even when a JSON response is
// requested, so this trims fences and scans for balanced object or array
// boundaries. It is a heuristic, not a parser: the result still has to pass
// json.Unmarshal.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if matches := codeBlockRegex.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	firstBrace := strings.Index(text, "{")
	firstBracket := strings.Index(text, "[")
	if firstBrace == -1 && firstBracket == -1 {
		return text
	}

	start := firstBrace
	open, closing := byte('{'), byte('}')
	if firstBrace == -1 || (firstBracket != -1 && firstBracket < firstBrace) {
		start = firstBracket
		open, closing = '[', ']'
	}

	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return text[start:]
}
