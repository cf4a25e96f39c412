package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractal-lba/rhymer/internal/rhyme"
	"github.com/fractal-lba/rhymer/pkg/palette"
)

var (
	red  = palette.RGB{R: 229, G: 68, B: 68}
	blue = palette.RGB{R: 68, G: 68, B: 229}
)

func TestWordColors(t *testing.T) {
	groups := []rhyme.Group{
		{Key: "AE1 T", Members: []string{"cat", "hat"}},
		{Key: "AY1 T", Members: []string{"light", "night"}},
		{Key: "AO1 G", Members: []string{"dog", "fog"}},
	}

	m := WordColors(groups, []palette.RGB{red, blue})

	assert.Equal(t, WordColorMap{"cat": red, "hat": red, "light": blue, "night": blue}, m,
		"groups past the color count are ignored")
}

func TestProject(t *testing.T) {
	doc := "The Cat sat on a hat; that cat! concatenate cats"
	spans := Project(doc, WordColorMap{"cat": red, "hat": blue})

	require.Len(t, spans, 3)
	want := []struct {
		word  string
		color palette.RGB
	}{{"Cat", red}, {"hat", blue}, {"cat", red}}

	for i, w := range want {
		s := spans[i]
		assert.Equal(t, w.word, doc[s.Start:s.Start+s.Length])
		assert.Equal(t, w.color, s.Color)
		assert.Equal(t, strings.ToLower(w.word), s.Word)
	}
	// "that", "concatenate" and "cats" contain the words but are not whole-word matches.
}

func TestProject_Ordered(t *testing.T) {
	doc := "night light night\nlight"
	spans := Project(doc, WordColorMap{"light": red, "night": red})

	require.Len(t, spans, 4)
	for i := 1; i < len(spans); i++ {
		assert.Less(t, spans[i-1].Start, spans[i].Start)
	}
}

func TestProject_Empty(t *testing.T) {
	assert.Empty(t, Project("cat hat", nil))
	assert.Empty(t, Project("", WordColorMap{"cat": red}))
}

func TestProject_UnderscoreIsWordChar(t *testing.T) {
	spans := Project("cat_hat cat-hat", WordColorMap{"cat": red, "hat": red})
	require.Len(t, spans, 2)
	assert.Equal(t, 8, spans[0].Start)
	assert.Equal(t, 12, spans[1].Start)
}

func TestNormalize_FirstMatchWins(t *testing.T) {
	spans := Normalize([]Span{
		{Start: 10, Length: 3, Color: blue},
		{Start: 0, Length: 5, Color: red},
		{Start: 2, Length: 4, Color: blue},
		{Start: 5, Length: 2, Color: blue},
	})

	assert.Equal(t, []Span{
		{Start: 0, Length: 5, Color: red},
		{Start: 5, Length: 2, Color: blue},
		{Start: 10, Length: 3, Color: blue},
	}, spans)
}
