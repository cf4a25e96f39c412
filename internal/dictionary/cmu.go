package dictionary

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Memory is an in-memory Source built from a CMUdict-format file.
// It is read-only after construction and safe for concurrent use.
type Memory struct {
	entries     map[string][]string
	fingerprint string
}

// NewMemory builds a Memory from word -> transcriptions.
func NewMemory(entries map[string][]string) *Memory {
	m := &Memory{entries: make(map[string][]string, len(entries))}
	for w, phones := range entries {
		m.entries[strings.ToLower(w)] = append([]string(nil), phones...)
	}
	return m
}

// Open reads a CMUdict file from path. Files ending in .xz are decompressed.
// The decompressed content's BLAKE3 hash becomes the Fingerprint.
func Open(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz dictionary %s: %w", path, err)
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}

	m, err := ParseCMU(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	m.fingerprint = Fingerprint(data)

	return m, nil
}

// Fingerprint returns the hex BLAKE3 hash of raw dictionary content.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ParseCMU parses the CMU pronouncing dictionary format:
//
//	;;; comment
//	CAT  K AE1 T
//	READ  R EH1 D
//	READ(2)  R IY1 D
//
// Keys are lowercased. Variants keep file order. Text after "#" is a
// comment, whether it trails an entry or fills the whole line.
func ParseCMU(r io.Reader) (*Memory, error) {
	m := &Memory{entries: make(map[string][]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
			if line == "" {
				continue
			}
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: %w: no phonemes for %q", lineNum, ErrMalformedEntry, line)
		}

		word := strings.ToLower(baseWord(fields[0]))
		m.entries[word] = append(m.entries[word], strings.Join(fields[1:], " "))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

// baseWord strips a "(n)" variant suffix.
func baseWord(w string) string {
	open := strings.LastIndexByte(w, '(')
	if open <= 0 || !strings.HasSuffix(w, ")") {
		return w
	}
	if _, err := strconv.Atoi(w[open+1 : len(w)-1]); err != nil {
		return w
	}
	return w[:open]
}

func (m *Memory) Lookup(_ context.Context, word string) ([]string, error) {
	phones := m.entries[word]
	if len(phones) == 0 {
		return nil, nil
	}
	return append([]string(nil), phones...), nil
}

func (m *Memory) Close() error { return nil }

// Len returns the number of distinct words.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Fingerprint returns the content hash recorded by Open, or "" for
// dictionaries built in memory.
func (m *Memory) Fingerprint() string {
	return m.fingerprint
}

// Entries returns every transcription, sorted by word then variant.
func (m *Memory) Entries() []Entry {
	words := make([]string, 0, len(m.entries))
	for w := range m.entries {
		words = append(words, w)
	}
	sort.Strings(words)

	out := make([]Entry, 0, len(words))
	for _, w := range words {
		for i, phones := range m.entries[w] {
			out = append(out, Entry{Word: w, Variant: i, Phones: phones})
		}
	}
	return out
}
