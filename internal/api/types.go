package api

import (
	"github.com/fractal-lba/rhymer/internal/engine"
	"github.com/fractal-lba/rhymer/pkg/phonetic"
)

// HighlightRequest is the body of POST /v1/highlight.
type HighlightRequest struct {
	Text string `json:"text"`
}

// HighlightResponse is one pass over the request text.
type HighlightResponse struct {
	PassID     string      `json:"pass_id"`
	Tokens     int         `json:"tokens"`
	Groups     []GroupView `json:"groups"`
	Spans      []SpanView  `json:"spans"`
	DurationMS float64     `json:"duration_ms"`
}

// GroupView is a rhyme group with its assigned color.
type GroupView struct {
	Key     string   `json:"key"`
	Members []string `json:"members"`
	Color   string   `json:"color"`
}

// SpanView is a highlighted occurrence. Offsets are bytes into the request text.
type SpanView struct {
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Color  string `json:"color"`
	Word   string `json:"word"`
}

// RhymeKeyResponse is the body of GET /v1/rhymekey.
type RhymeKeyResponse struct {
	Word   string `json:"word"`
	Phones string `json:"phones"`
	Key    string `json:"key,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromResult converts an engine result to its wire form. Colors are
// "#rrggbb" strings.
func FromResult(r *engine.Result) HighlightResponse {
	resp := HighlightResponse{
		PassID:     r.PassID,
		Tokens:     r.Tokens,
		Groups:     make([]GroupView, 0, len(r.Groups)),
		Spans:      make([]SpanView, 0, len(r.Spans)),
		DurationMS: float64(r.Duration.Microseconds()) / 1000,
	}
	for i, g := range r.Groups {
		gv := GroupView{Key: g.Key, Members: g.Members}
		if i < len(r.Colors) {
			gv.Color = r.Colors[i].Hex()
		}
		resp.Groups = append(resp.Groups, gv)
	}
	for _, s := range r.Spans {
		resp.Spans = append(resp.Spans, SpanView{
			Start:  s.Start,
			Length: s.Length,
			Color:  s.Color.Hex(),
			Word:   s.Word,
		})
	}
	return resp
}

// NewRhymeKeyResponse describes word's resolved pronunciation.
func NewRhymeKeyResponse(word string, p phonetic.Pronunciation) RhymeKeyResponse {
	key, _ := p.RhymeKey()
	return RhymeKeyResponse{Word: word, Phones: p.String(), Key: key}
}
