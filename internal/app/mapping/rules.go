package mapping

import (
	"sort"
	"strings"

	"github.com/issafronov/redirectmap/internal/app/models"
)

const (
	// MinRuleSupport минимальное число пар, подтверждающих правило
	MinRuleSupport = 5

	MaxRules = 5
)

type segmentPair struct {
	from, to string
}

// InferPrefixRules агрегирует пары по паре первых сегментов пути и возвращает
// правила с поддержкой не меньше MinRuleSupport, по убыванию поддержки.
// Пары, не прошедшие верификацию, не учитываются.
func InferPrefixRules(pairs []models.MappingPair) []models.PrefixRule {
	counts := make(map[segmentPair]int)
	for _, p := range pairs {
		if p.VerifyOk != nil && !*p.VerifyOk {
			continue
		}
		from, to := firstSegment(p.From), firstSegment(p.To)
		if from == "" || to == "" || from == to {
			continue
		}
		counts[segmentPair{from: from, to: to}]++
	}

	rules := make([]models.PrefixRule, 0, len(counts))
	for key, support := range counts {
		if support < MinRuleSupport {
			continue
		}
		rules = append(rules, models.PrefixRule{
			FromPrefix: "/" + key.from + "/",
			ToPrefix:   "/" + key.to + "/",
			Support:    support,
		})
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Support != rules[j].Support {
			return rules[i].Support > rules[j].Support
		}
		if rules[i].FromPrefix != rules[j].FromPrefix {
			return rules[i].FromPrefix < rules[j].FromPrefix
		}
		return rules[i].ToPrefix < rules[j].ToPrefix
	})
	if len(rules) > MaxRules {
		rules = rules[:MaxRules]
	}
	return rules
}

func firstSegment(raw string) string {
	u, err := ParseURL(raw)
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(u.EscapedPath(), "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
