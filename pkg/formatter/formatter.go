package formatter

import (
	"strings"
	"unicode"
)

// Marcy's voice persona caps every outbound utterance at a fixed word
// budget so replies stay short enough for speech channels.
const DefaultMaxWords = 25

const fallbackClarification = "I'm sorry, could you repeat that?"

// Format applies the standard 25-word budget.
func Format(text string) string {
	return FormatN(text, DefaultMaxWords)
}

// FormatN trims text to at most maxWords words, drops a trailing word that
// would end mid-clause, guarantees terminal punctuation and capitalizes the
// first letter. Empty input returns the canonical clarification phrase.
func FormatN(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return fallbackClarification
	}

	if len(words) > maxWords {
		truncated := words[:maxWords]
		if !endsSentence(truncated[len(truncated)-1]) {
			truncated = truncated[:len(truncated)-1]
		}
		if len(truncated) == 0 {
			truncated = words[:1]
		}
		words = truncated
	}

	out := strings.Join(words, " ")
	if !endsSentence(out) {
		out += "."
	}

	runes := []rune(out)
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}

// Closing returns Marcy's standard closing line.
func Closing() string {
	return "Thank you for calling CallWaitingAI. Have a wonderful day."
}

func endsSentence(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
