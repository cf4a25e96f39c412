package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const sampleCMU = `;;; sample of the CMU pronouncing dictionary
CAT  K AE1 T
HAT  HH AE1 T
MAT  M AE1 T
DOG  D AO1 G
READ  R EH1 D
READ(2)  R IY1 D
LIGHT  L AY1 T  # comment
NIGHT  N AY1 T

THE  DH AH0
`

func TestParseCMU(t *testing.T) {
	m, err := ParseCMU(strings.NewReader(sampleCMU))
	require.NoError(t, err)

	assert.Equal(t, 8, m.Len())

	phones, err := m.Lookup(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"K AE1 T"}, phones)

	phones, err = m.Lookup(context.Background(), "read")
	require.NoError(t, err)
	assert.Equal(t, []string{"R EH1 D", "R IY1 D"}, phones, "variants keep file order")

	phones, err = m.Lookup(context.Background(), "light")
	require.NoError(t, err)
	assert.Equal(t, []string{"L AY1 T"}, phones, "trailing comment stripped")

	phones, err = m.Lookup(context.Background(), "catt")
	require.NoError(t, err)
	assert.Empty(t, phones)
}

func TestParseCMU_Comments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "full-line hash comment", input: "# header comment\ncat K AE1 T\n"},
		{name: "indented hash comment", input: "   # note\ncat K AE1 T\n"},
		{name: "triple semicolon comment", input: ";;; header\ncat K AE1 T\n"},
		{name: "trailing comment", input: "cat K AE1 T # note\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseCMU(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, 1, m.Len())

			phones, err := m.Lookup(context.Background(), "cat")
			require.NoError(t, err)
			assert.Equal(t, []string{"K AE1 T"}, phones)
		})
	}
}

func TestParseCMU_Malformed(t *testing.T) {
	_, err := ParseCMU(strings.NewReader("CAT  K AE1 T\nBROKEN\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEntry)
	assert.Contains(t, err.Error(), "line 2")
}

func TestBaseWord(t *testing.T) {
	tests := map[string]string{
		"READ(2)": "READ",
		"READ":    "READ",
		"(1)":     "(1)",
		"A(B)":    "A(B)",
		"X(10)":   "X",
	}
	for in, want := range tests {
		assert.Equal(t, want, baseWord(in), in)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	m := NewMemory(map[string][]string{"Cat": {"K AE1 T"}})

	phones, err := m.Lookup(context.Background(), "cat")
	require.NoError(t, err)
	phones[0] = "mutated"

	again, _ := m.Lookup(context.Background(), "cat")
	assert.Equal(t, []string{"K AE1 T"}, again)
}

func TestEntriesSorted(t *testing.T) {
	m, err := ParseCMU(strings.NewReader(sampleCMU))
	require.NoError(t, err)

	entries := m.Entries()
	require.Len(t, entries, 9)
	assert.Equal(t, Entry{Word: "cat", Variant: 0, Phones: "K AE1 T"}, entries[0])

	var reads []Entry
	for _, e := range entries {
		if e.Word == "read" {
			reads = append(reads, e)
		}
	}
	assert.Equal(t, []Entry{
		{Word: "read", Variant: 0, Phones: "R EH1 D"},
		{Word: "read", Variant: 1, Phones: "R IY1 D"},
	}, reads)
}

func TestOpen_PlainAndXZ(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "cmudict.dict")
	require.NoError(t, os.WriteFile(plain, []byte(sampleCMU), 0o644))

	compressed := filepath.Join(dir, "cmudict.dict.xz")
	f, err := os.Create(compressed)
	require.NoError(t, err)
	w, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleCMU))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	a, err := Open(plain)
	require.NoError(t, err)
	b, err := Open(compressed)
	require.NoError(t, err)

	assert.Equal(t, a.Len(), b.Len())
	assert.NotEmpty(t, a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "fingerprint covers decompressed content")
	assert.Equal(t, Fingerprint([]byte(sampleCMU)), a.Fingerprint())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.dict"))
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	var src Source = Func(func(_ context.Context, word string) ([]string, error) {
		return []string{word}, nil
	})
	phones, err := src.Lookup(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, phones)
	assert.NoError(t, src.Close())
}
