package mapping

// Delta — результат сравнения двух инвентарей URL
type Delta struct {
	Added     []string
	Removed   []string
	Truncated bool
}

// Capped обрезает список до limit элементов и сообщает, пришлось ли обрезать
func Capped(urls []string, limit int) ([]string, bool) {
	if limit <= 0 || len(urls) <= limit {
		return urls, false
	}
	return urls[:limit], true
}

// Diff канонизирует оба списка, ограничивает их размером limit и вычисляет
// removed = old − new и added = new − old в исходном порядке.
func Diff(oldURLs, newURLs []string, limit int) Delta {
	oldSet, oldTruncated := Capped(CanonicalizeAll(oldURLs), limit)
	newSet, newTruncated := Capped(CanonicalizeAll(newURLs), limit)

	return Delta{
		Added:     subtract(newSet, oldSet),
		Removed:   subtract(oldSet, newSet),
		Truncated: oldTruncated || newTruncated,
	}
}

func subtract(from, other []string) []string {
	index := make(map[string]struct{}, len(other))
	for _, u := range other {
		index[u] = struct{}{}
	}
	out := make([]string, 0, len(from))
	for _, u := range from {
		if _, ok := index[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}
