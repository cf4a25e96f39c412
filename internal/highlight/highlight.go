// Package highlight turns rhyme groups and their colors into paint spans.
package highlight

import (
	"sort"

	"github.com/fractal-lba/rhymer/internal/rhyme"
	"github.com/fractal-lba/rhymer/pkg/palette"
	"github.com/fractal-lba/rhymer/pkg/text"
)

// WordColorMap maps a lowercased word to its highlight color.
type WordColorMap map[string]palette.RGB

// Span is one highlighted occurrence: Start and Length are byte offsets
// into the document text.
type Span struct {
	Start  int         `json:"start"`
	Length int         `json:"length"`
	Color  palette.RGB `json:"color"`
	Word   string      `json:"word"`
}

// WordColors assigns colors[i] to every member of groups[i]. Groups beyond
// len(colors) get no color.
func WordColors(groups []rhyme.Group, colors []palette.RGB) WordColorMap {
	m := make(WordColorMap)
	for i, g := range groups {
		if i >= len(colors) {
			break
		}
		for _, w := range g.Members {
			m[w] = colors[i]
		}
	}
	return m
}

// Project finds every whole-word, case-insensitive occurrence of every
// mapped word in doc and returns one span per occurrence, ordered by Start.
//
// A whole-word match of a word made of word runes is exactly a token of doc
// with the same lowercased text, so matching runs over the token stream.
func Project(doc string, colors WordColorMap) []Span {
	return ProjectTokens(text.Tokenize(doc), colors)
}

// ProjectTokens is Project over an already tokenized document.
func ProjectTokens(tokens []text.Token, colors WordColorMap) []Span {
	spans := []Span{}
	if len(colors) == 0 {
		return spans
	}

	for _, tok := range tokens {
		c, ok := colors[tok.Text]
		if !ok {
			continue
		}
		spans = append(spans, Span{Start: tok.Start, Length: tok.Length, Color: c, Word: tok.Text})
	}

	return Normalize(spans)
}

// Normalize sorts spans by Start and drops any span starting inside an
// earlier one (first match wins).
func Normalize(spans []Span) []Span {
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	out := spans[:0]
	end := -1
	for _, s := range spans {
		if s.Start < end {
			continue
		}
		out = append(out, s)
		end = s.Start + s.Length
	}
	return out
}
