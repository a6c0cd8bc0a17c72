package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NarrationChunks splits chapters into pieces of at most limit characters for
// speech synthesis. Every chapter starts a new piece. Long chapters are cut
// at the last sentence end that fits, then at whitespace, and only as a last
// resort inside a word. Empty chapters are skipped.
func NarrationChunks(chapters []string, limit int) []string {
	if limit < 1 {
		limit = 1
	}

	var out []string
	for _, ch := range chapters {
		text := strings.TrimSpace(ch)
		for text != "" {
			if utf8.RuneCountInString(text) <= limit {
				out = append(out, text)
				break
			}
			cut := narrationCut(text, limit)
			out = append(out, strings.TrimSpace(text[:cut]))
			text = strings.TrimSpace(text[cut:])
		}
	}
	return out
}

// narrationCut returns the byte offset to cut text at. text must be longer
// than limit characters and must not start with whitespace.
func narrationCut(text string, limit int) int {
	end := 0
	for range limit {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}

	if cut := lastSentenceEnd(text, end); cut > 0 {
		return cut
	}
	if i := strings.LastIndexFunc(text[:end], unicode.IsSpace); i > 0 {
		return i
	}
	return end
}

// lastSentenceEnd returns the offset just past the last newline, or the last
// ".", "!" or "?" followed by whitespace, that lies within text[:end]. It
// returns 0 when there is none.
func lastSentenceEnd(text string, end int) int {
	for i := end - 1; i > 0; i-- {
		switch text[i] {
		case '\n':
			return i + 1
		case '.', '!', '?':
			if r, _ := utf8.DecodeRuneInString(text[i+1:]); unicode.IsSpace(r) {
				return i + 1
			}
		}
	}
	return 0
}
