package mapping

import (
	"github.com/issafronov/redirectmap/internal/app/models"
)

// Dedup оставляет по одной паре на каждый from с наибольшей уверенностью,
// при равенстве первую встреченную. Возвращает пары в порядке первого появления from
// и удалённые URL, для которых пары не нашлось.
func Dedup(pairs []models.MappingPair, removed []string) ([]models.MappingPair, []string) {
	index := make(map[string]int, len(pairs))
	out := make([]models.MappingPair, 0, len(pairs))
	for _, p := range pairs {
		i, ok := index[p.From]
		if !ok {
			index[p.From] = len(out)
			out = append(out, p)
			continue
		}
		if p.Confidence > out[i].Confidence {
			out[i] = p
		}
	}

	unmapped := make([]string, 0, len(removed))
	for _, r := range removed {
		if _, ok := index[r]; !ok {
			unmapped = append(unmapped, r)
		}
	}
	return out, unmapped
}
