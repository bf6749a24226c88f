package mapping

import (
	"strings"
	"unicode"

	"github.com/issafronov/redirectmap/internal/app/models"
)

const (
	slugSimilarThreshold = 0.85
	pathSimilarThreshold = 0.70
)

// Score описывает уровень уверенности для пары (удалённый путь, путь кандидата)
type Score struct {
	Note       models.Note
	Confidence float64
	// PathSimilarity используется только для разрешения ничьих
	PathSimilarity float64
}

var tierConfidence = map[models.Note]float64{
	models.NoteSlugExact:     0.95,
	models.NoteSlugSimilar:   0.88,
	models.NotePathSimilar:   0.75,
	models.NoteLowSimilarity: 0.40,
}

// Confidence возвращает фиксированную уверенность уровня
func Confidence(note models.Note) float64 {
	return tierConfidence[note]
}

// ScorePaths сравнивает два пути. Уровни проверяются по приоритету, первый совпавший побеждает.
// Пути ожидаются в нижнем регистре без завершающего "/".
func ScorePaths(removedPath, candidatePath string) Score {
	pathSim := Similarity(removedPath, candidatePath)
	score := func(note models.Note) Score {
		return Score{Note: note, Confidence: tierConfidence[note], PathSimilarity: pathSim}
	}

	slugA, slugB := lastSegment(removedPath), lastSegment(candidatePath)
	if slugA == slugB {
		return score(models.NoteSlugExact)
	}

	normA, normB := slugNorm(slugA), slugNorm(slugB)
	if Similarity(normA, normB) >= slugSimilarThreshold {
		return score(models.NoteSlugSimilar)
	}

	if pathSim >= pathSimilarThreshold {
		return score(models.NotePathSimilar)
	}
	return score(models.NoteLowSimilarity)
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// slugNorm переводит сегмент в нижний регистр и схлопывает любые
// последовательности небуквенно-цифровых символов в один пробел.
func slugNorm(seg string) string {
	var b strings.Builder
	b.Grow(len(seg))
	pendingSpace := false
	for _, r := range strings.ToLower(seg) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Similarity возвращает 1 - levenshtein(a, b) / max(len(a), len(b))
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb), 1)
	return 1 - float64(levenshteinRunes(ra, rb))/float64(maxLen)
}

// Levenshtein считает редакционное расстояние по рунам, каждая операция стоит 1
func Levenshtein(a, b string) int {
	return levenshteinRunes([]rune(a), []rune(b))
}

// levenshteinRunes хранит одну строку таблицы длиной min(len(a), len(b))+1
func levenshteinRunes(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(row[j]+1, row[j-1]+1, diag+cost)
			diag = row[j]
			row[j] = next
		}
	}
	return row[len(b)]
}
