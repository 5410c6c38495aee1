package concept

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum fuzzy similarity (0-100) for a header to
// be accepted as a concept match. Empirically chosen; exposed through
// configuration rather than relied on as optimal.
const DefaultThreshold = 85

// NormalizedColumn is the result of matching one raw header. It is produced
// per column per sheet and never persisted.
type NormalizedColumn struct {
	RawHeader  string
	Normalized string
	Concept    ID   // empty when no concept matched
	Score      int  // similarity score of the accepted match (exact = 100)
	Matched    bool
}

// Normalize reduces a raw header to its canonical comparison form:
// lower-cased, characters outside [a-z0-9 ] mapped to spaces, runs of
// whitespace collapsed. Total and idempotent.
func Normalize(raw string) string {
	lower := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lower))
	lastSpace := true
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Matcher maps normalized headers onto concepts using the synonym catalog.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	threshold int
	flat      []synonym // normalized synonyms across the whole catalog
	literal   map[string]ID
}

type synonym struct {
	text    string
	concept ID
}

// NewMatcher builds a matcher with the given acceptance threshold.
// Thresholds outside (0,100] fall back to DefaultThreshold.
func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	m := &Matcher{
		threshold: threshold,
		literal:   make(map[string]ID, len(catalog)),
	}
	for _, def := range catalog {
		m.literal[Normalize(string(def.ID))] = def.ID
		for _, s := range def.Synonyms {
			m.flat = append(m.flat, synonym{text: Normalize(s), concept: def.ID})
		}
	}
	return m
}

// Match resolves a raw header to a concept.
//
// Resolution order: exact date-synonym lookup, then best fuzzy synonym at or
// above the threshold, then a literal comparison against concept ids. A
// header that resolves to nothing is reported unmatched; the caller treats
// it as free-form and buckets the column's values as extras.
func (m *Matcher) Match(raw string) NormalizedColumn {
	col := NormalizedColumn{RawHeader: raw, Normalized: Normalize(raw)}
	if col.Normalized == "" {
		return col
	}

	// Date headers resolve deterministically before fuzzy scoring.
	if id, ok := dateSynonyms[col.Normalized]; ok {
		col.Concept = id
		col.Score = 100
		col.Matched = true
		return col
	}

	bestScore := -1
	var bestConcept ID
	for _, s := range m.flat {
		score := Ratio(col.Normalized, s.text)
		if score > bestScore {
			bestScore = score
			bestConcept = s.concept
		}
	}
	if bestScore >= m.threshold {
		col.Concept = bestConcept
		col.Score = bestScore
		col.Matched = true
		return col
	}

	// Synonym sets have gaps; a header that literally names a concept still
	// counts even when the fuzzy pass missed it.
	if id, ok := m.literal[col.Normalized]; ok {
		col.Concept = id
		col.Score = 100
		col.Matched = true
		return col
	}

	col.Score = bestScore
	return col
}

// Ratio returns an edit-distance similarity between two strings on a 0-100
// scale, where 100 means identical.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (longest - dist) * 100 / longest
}
