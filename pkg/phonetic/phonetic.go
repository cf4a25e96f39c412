// Package phonetic works with ARPAbet transcriptions as found in the CMU
// pronouncing dictionary: vowels carry a trailing stress digit (0 unstressed,
// 1 primary, 2 secondary), consonants carry none.
package phonetic

import "strings"

// Pronunciation is an ordered phoneme sequence, e.g. ["K", "AE1", "T"].
type Pronunciation []string

// ParsePhones splits a transcription such as "K AE1 T" on whitespace.
func ParsePhones(s string) Pronunciation {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return Pronunciation(fields)
}

// String joins the phonemes with single spaces.
func (p Pronunciation) String() string {
	return strings.Join(p, " ")
}

// Stress returns the stress digit of a phoneme and whether it has one.
func Stress(phone string) (int, bool) {
	if phone == "" {
		return 0, false
	}
	c := phone[len(phone)-1]
	if c < '0' || c > '2' {
		return 0, false
	}
	return int(c - '0'), true
}

// IsStressed reports whether phone is a vowel carrying primary or secondary stress.
func IsStressed(phone string) bool {
	s, ok := Stress(phone)
	return ok && s > 0
}

// RhymeKey returns the phonemes from the stressed vowel closest to the end
// through the end of the word, joined by spaces. Words with no stressed vowel
// have no key.
func RhymeKey(phones Pronunciation) (string, bool) {
	for i := len(phones) - 1; i >= 0; i-- {
		if IsStressed(phones[i]) {
			return phones[i:].String(), true
		}
	}
	return "", false
}

// RhymeKey is a convenience for RhymeKey(p).
func (p Pronunciation) RhymeKey() (string, bool) {
	return RhymeKey(p)
}
