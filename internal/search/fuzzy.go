// Package search ranks notes by approximate similarity of a query to their body.
//
// A note matches when the query can be turned into some substring of the
// body with at most threshold*len(query) single-rune edits (insert, delete,
// substitute). Comparison is done on Unicode case-folded text.
package search

import (
	"slices"
	"strings"

	"ai-notes-backend/internal/models"

	"golang.org/x/text/cases"
)

// DefaultThreshold includes a note when at most 40% of the query runes need an edit.
const DefaultThreshold = 0.4

// MaxQueryRunes bounds the work per note to MaxQueryRunes*len(body). Longer
// queries are matched on their first MaxQueryRunes runes.
const MaxQueryRunes = 64

type Option func(*Index)

// WithThreshold sets the inclusion threshold in [0, 1]. 0 means exact substring only.
func WithThreshold(t float64) Option {
	return func(ix *Index) {
		if t >= 0 && t <= 1 {
			ix.threshold = t
		}
	}
}

// Index holds the folded note bodies. It is immutable; build a new one when
// the note set changes.
type Index struct {
	notes     []models.Note
	bodies    [][]rune
	threshold float64
}

type Result struct {
	Note  models.Note
	Score float64
}

func New(notes []models.Note, opts ...Option) *Index {
	ix := &Index{
		notes:     notes,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(ix)
	}

	ix.bodies = make([][]rune, len(notes))
	for i, n := range notes {
		ix.bodies[i] = []rune(fold(n.Text))
	}
	return ix
}

// Search returns the matching notes best first. An empty query returns every
// note in its original order.
func (ix *Index) Search(query string) []models.Note {
	if strings.TrimSpace(query) == "" {
		return slices.Clone(ix.notes)
	}

	results := ix.Rank(query)
	out := make([]models.Note, len(results))
	for i, r := range results {
		out[i] = r.Note
	}
	return out
}

// Rank scores every note against the query and keeps those within the
// threshold, sorted by score. Ties keep the original order.
func (ix *Index) Rank(query string) []Result {
	pattern := []rune(fold(strings.TrimSpace(query)))
	if len(pattern) > MaxQueryRunes {
		pattern = pattern[:MaxQueryRunes]
	}
	if len(pattern) == 0 {
		results := make([]Result, len(ix.notes))
		for i, n := range ix.notes {
			results[i] = Result{Note: n}
		}
		return results
	}

	maxEdits := int(ix.threshold * float64(len(pattern)))

	results := []Result{}
	for i, body := range ix.bodies {
		dist := substringDistance(pattern, body, maxEdits)
		if dist > maxEdits {
			continue
		}
		results = append(results, Result{
			Note:  ix.notes[i],
			Score: float64(dist) / float64(len(pattern)),
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		default:
			return 0
		}
	})
	return results
}

// fold case-folds s. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// substringDistance returns the smallest edit distance between pattern and any
// substring of text (Sellers' algorithm), capped at limit+1.
func substringDistance(pattern, text []rune, limit int) int {
	m := len(pattern)
	if m == 0 {
		return 0
	}

	// prev[i] is the distance between pattern[:i] and the best substring ending
	// at the current text position. A match may start anywhere, so row 0 is 0.
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}

	best := prev[m]
	for _, c := range text {
		curr[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == c {
				cost = 0
			}
			curr[i] = min(prev[i-1]+cost, prev[i]+1, curr[i-1]+1)
		}
		best = min(best, curr[m])
		if best == 0 {
			return 0
		}
		prev, curr = curr, prev
	}

	if best > limit {
		return limit + 1
	}
	return best
}
