// Package rhyme buckets words into rhyme groups by exact rhyme key.
package rhyme

// Pair is a word with its rhyme key.
type Pair struct {
	Word string
	Key  string
}

// Group is a set of distinct words sharing a rhyme key.
// Members are in first-seen order and always number at least two.
type Group struct {
	Key     string   `json:"key"`
	Members []string `json:"members"`
}

// Contains reports whether word is a member of g.
func (g Group) Contains(word string) bool {
	for _, m := range g.Members {
		if m == word {
			return true
		}
	}
	return false
}

// Bucket groups pairs by identical key. Repeated words count once, buckets
// with a single distinct word are dropped, and groups are ordered by the
// first appearance of their key.
func Bucket(pairs []Pair) []Group {
	var order []string
	buckets := make(map[string]*Group)
	seen := make(map[Pair]struct{}, len(pairs))

	for _, p := range pairs {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		b, ok := buckets[p.Key]
		if !ok {
			b = &Group{Key: p.Key}
			buckets[p.Key] = b
			order = append(order, p.Key)
		}
		b.Members = append(b.Members, p.Word)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		if b := buckets[key]; len(b.Members) >= 2 {
			groups = append(groups, *b)
		}
	}
	return groups
}
