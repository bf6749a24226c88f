package mapping

import (
	"github.com/issafronov/redirectmap/internal/app/models"
)

// AcceptThreshold минимальная уверенность, при которой пара попадает в результат
const AcceptThreshold = 0.66

// SelectBest выбирает для каждого удалённого URL лучшего кандидата из его пула.
// При равной уверенности побеждает кандидат с большим сходством полного пути,
// затем стоящий раньше в списке добавленных URL.
func SelectBest(removed, added []string, sameRegDomainOnly bool) []models.MappingPair {
	pools := groupTargets(parseTargets(removed), parseTargets(added))
	pairs := make([]models.MappingPair, 0, len(pools))
	for _, pool := range pools {
		if pair, ok := selectFromPool(pool, sameRegDomainOnly); ok {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

func selectFromPool(pool candidatePool, sameRegDomainOnly bool) (models.MappingPair, bool) {
	r := pool.removed
	var (
		best     Score
		bestURL  string
		haveBest bool
	)
	for _, c := range pool.candidates {
		if sameRegDomainOnly && c.regDomain != r.regDomain {
			continue
		}
		s := ScorePaths(r.path, c.path)
		if !haveBest || better(s, best) {
			best, bestURL, haveBest = s, c.raw, true
		}
	}
	if !haveBest || best.Confidence < AcceptThreshold {
		return models.MappingPair{}, false
	}
	return models.MappingPair{
		From:       r.raw,
		To:         bestURL,
		Confidence: best.Confidence,
		Note:       best.Note,
		Method:     models.MethodPermanent,
	}, true
}

func better(s, current Score) bool {
	if s.Confidence != current.Confidence {
		return s.Confidence > current.Confidence
	}
	return s.PathSimilarity > current.PathSimilarity
}
