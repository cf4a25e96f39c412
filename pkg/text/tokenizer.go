package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a lowercased word and its position in the source text.
// Start and Length are byte offsets into the original (not lowercased) text.
type Token struct {
	Text   string
	Start  int
	Length int
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Start + t.Length
}

// IsWordRune reports whether r belongs to a word: letters, digits and underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokenize splits text into maximal runs of word runes, lowercased (Unicode-aware).
// Tokens are returned in source order and are not de-duplicated.
func Tokenize(text string) []Token {
	tokens := []Token{}
	var currentWord strings.Builder
	start := -1

	for i, r := range text {
		if IsWordRune(r) {
			if start < 0 {
				start = i
			}
			currentWord.WriteRune(unicode.ToLower(r))
			continue
		}

		// Delimiter found
		if start >= 0 {
			tokens = append(tokens, Token{Text: currentWord.String(), Start: start, Length: i - start})
			currentWord.Reset()
			start = -1
		}
	}

	// Add last word if present
	if start >= 0 {
		tokens = append(tokens, Token{Text: currentWord.String(), Start: start, Length: len(text) - start})
	}

	return tokens
}

// Words returns only the token texts of Tokenize.
func Words(text string) []string {
	tokens := Tokenize(text)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}
	return words
}

// RuneLen returns the number of characters in word.
func RuneLen(word string) int {
	return utf8.RuneCountInString(word)
}
