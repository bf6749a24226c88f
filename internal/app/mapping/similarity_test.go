package mapping

import (
	"testing"

	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"привет", "превед", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "levenshtein(%q, %q)", tt.a, tt.b)
		assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "levenshtein must be symmetric")
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 1-1.0/11, Similarity("hello world", "hello wrld"), 1e-9)
}

func TestSlugNorm(t *testing.T) {
	assert.Equal(t, "hello world", slugNorm("Hello-World"))
	assert.Equal(t, "hello world", slugNorm("--hello__world--"))
	assert.Equal(t, "page 2", slugNorm("page.2"))
	assert.Equal(t, "", slugNorm("---"))
}

func TestScorePaths(t *testing.T) {
	tests := []struct {
		name      string
		removed   string
		candidate string
		want      models.Note
	}{
		{name: "exact slug", removed: "/blog/hello-world", candidate: "/articles/hello-world", want: models.NoteSlugExact},
		{name: "similar slug", removed: "/blog/hello-world", candidate: "/articles/hello-wrld", want: models.NoteSlugSimilar},
		{name: "similar slug by separators", removed: "/blog/hello_world", candidate: "/articles/hello-world", want: models.NoteSlugSimilar},
		{name: "similar path", removed: "/products/item-123", candidate: "/products/item-124x", want: models.NotePathSimilar},
		{name: "unrelated", removed: "/blog/hello-world", candidate: "/x/totally-unrelated-page", want: models.NoteLowSimilarity},
		{name: "root paths share an empty slug", removed: "", candidate: "", want: models.NoteSlugExact},
		{name: "root with slash", removed: "/", candidate: "/", want: models.NoteSlugExact},
		{name: "punctuation-only slugs", removed: "/---", candidate: "/__", want: models.NoteSlugSimilar},
		{name: "root against named page", removed: "", candidate: "/careers", want: models.NoteLowSimilarity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ScorePaths(tt.removed, tt.candidate)
			assert.Equal(t, tt.want, s.Note)
			assert.Equal(t, Confidence(tt.want), s.Confidence)
		})
	}
}

func TestConfidenceTiers(t *testing.T) {
	assert.Equal(t, 0.95, Confidence(models.NoteSlugExact))
	assert.Equal(t, 0.88, Confidence(models.NoteSlugSimilar))
	assert.Equal(t, 0.75, Confidence(models.NotePathSimilar))
	assert.Equal(t, 0.40, Confidence(models.NoteLowSimilarity))
	assert.Less(t, Confidence(models.NoteLowSimilarity), AcceptThreshold)
}
