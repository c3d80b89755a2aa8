package search

import (
	"strings"
	"testing"
	"time"

	"ai-notes-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func note(text string) models.Note {
	now := time.Now()
	return models.Note{ID: uuid.New(), Text: text, CreatedAt: now, UpdatedAt: now}
}

func ids(notes []models.Note) []uuid.UUID {
	out := make([]uuid.UUID, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestSearch_EmptyQueryReturnsInputOrder(t *testing.T) {
	t.Parallel()

	notes := []models.Note{note("groceries"), note("meeting notes"), note("")}
	ix := New(notes)

	assert.Equal(t, ids(notes), ids(ix.Search("")))
	assert.Equal(t, ids(notes), ids(ix.Search("   ")))
}

func TestSearch_TypoTolerant(t *testing.T) {
	t.Parallel()

	groceries := note("Buy milk and eggs")
	meeting := note("Meeting with the design team on Friday")
	ix := New([]models.Note{groceries, meeting})

	got := ix.Search("meetnig")
	require.Len(t, got, 1)
	assert.Equal(t, meeting.ID, got[0].ID)

	got = ix.Search("MILK")
	require.Len(t, got, 1)
	assert.Equal(t, groceries.ID, got[0].ID)

	assert.Empty(t, ix.Search("xylophone"))
}

func TestSearch_RanksBetterMatchFirst(t *testing.T) {
	t.Parallel()

	reordered := note("recipe for pancakes")
	exact := note("the pancake recipe")
	far := note("nothing relevant here")
	ix := New([]models.Note{reordered, far, exact})

	results := ix.Rank("pancake recipe")
	require.NotEmpty(t, results)
	assert.Equal(t, exact.ID, results[0].Note.ID)
	assert.Zero(t, results[0].Score)
	for _, r := range results {
		assert.NotEqual(t, far.ID, r.Note.ID)
	}
}

func TestSearch_ThresholdZeroIsExactSubstring(t *testing.T) {
	t.Parallel()

	hit := note("alpha beta")
	miss := note("alpha betta")
	ix := New([]models.Note{hit, miss}, WithThreshold(0))

	got := ix.Search("a beta")
	require.Len(t, got, 1)
	assert.Equal(t, hit.ID, got[0].ID)
}

func TestWithThreshold_IgnoresOutOfRange(t *testing.T) {
	t.Parallel()

	ix := New(nil, WithThreshold(2))
	assert.InDelta(t, DefaultThreshold, ix.threshold, 1e-9)
	assert.Empty(t, ix.Search(""))
}

func TestSubstringDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern, text string
		want          int
	}{
		{"abc", "xxabcxx", 0},
		{"abc", "xxabxx", 1},
		{"abc", "", 3},
		{"kitten", "sitting", 2},
		{"", "anything", 0},
	}
	for _, tt := range tests {
		got := substringDistance([]rune(tt.pattern), []rune(tt.text), 10)
		assert.Equal(t, tt.want, got, "%q in %q", tt.pattern, tt.text)
	}

	assert.Equal(t, 2, substringDistance([]rune("abcdef"), []rune("zzz"), 1))
}

func TestSearch_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		texts := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z0-9 .,]{0,40}`), 0, 12).Draw(t, "texts")
		notes := make([]models.Note, len(texts))
		for i, s := range texts {
			notes[i] = note(s)
		}
		ix := New(notes)

		// empty query is the identity
		if got := ids(ix.Search("")); len(notes) > 0 && !equalIDs(got, ids(notes)) {
			t.Fatalf("empty query reordered notes")
		}

		if len(notes) == 0 {
			return
		}

		// a query equal to a full body always finds that note
		i := rapid.IntRange(0, len(notes)-1).Draw(t, "pick")
		found := false
		for _, n := range ix.Search(notes[i].Text) {
			if n.ID == notes[i].ID {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("exact body %q not found", notes[i].Text)
		}

		// results never invent notes and are sorted by score
		results := ix.Rank(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "query"))
		for k := 1; k < len(results); k++ {
			if results[k-1].Score > results[k].Score {
				t.Fatalf("results not sorted at %d", k)
			}
		}
		if len(results) > len(notes) {
			t.Fatalf("more results than notes")
		}
	})
}

func equalIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearch_LongQueryUsesLeadingRunes(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("groceries and errands ", 20)
	notes := []models.Note{
		{ID: uuid.New(), Text: long},
		{ID: uuid.New(), Text: "unrelated"},
	}
	ix := New(notes)

	// The whole body as query still matches exactly.
	results := ix.Rank(long)
	require.Len(t, results, 1)
	assert.Equal(t, notes[0].ID, results[0].Note.ID)
	assert.Zero(t, results[0].Score)

	// Only the first MaxQueryRunes runes are compared.
	query := long[:MaxQueryRunes] + strings.Repeat("z", 500)
	results = ix.Rank(query)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Score)
}
