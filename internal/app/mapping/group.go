package mapping

// candidatePool содержит кандидатов для одного удалённого URL
type candidatePool struct {
	removed    target
	candidates []target
}

// GroupCandidates строит пул кандидатов для каждого удалённого URL:
// сначала добавленные URL того же хоста, затем того же регистрируемого домена,
// и только если таких нет, весь список добавленных.
func GroupCandidates(removed, added []string) map[string][]string {
	pools := groupTargets(parseTargets(removed), parseTargets(added))
	out := make(map[string][]string, len(pools))
	for _, p := range pools {
		urls := make([]string, 0, len(p.candidates))
		for _, c := range p.candidates {
			urls = append(urls, c.raw)
		}
		out[p.removed.raw] = urls
	}
	return out
}

func parseTargets(urls []string) []target {
	out := make([]target, 0, len(urls))
	for _, u := range urls {
		t, err := newTarget(u)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

func groupTargets(removed, added []target) []candidatePool {
	byHost := make(map[string][]target)
	byDomain := make(map[string][]target)
	for _, a := range added {
		byHost[a.host] = append(byHost[a.host], a)
		byDomain[a.regDomain] = append(byDomain[a.regDomain], a)
	}

	pools := make([]candidatePool, 0, len(removed))
	for _, r := range removed {
		candidates := byHost[r.host]
		if len(candidates) == 0 {
			candidates = byDomain[r.regDomain]
		}
		if len(candidates) == 0 {
			candidates = added
		}
		pools = append(pools, candidatePool{removed: r, candidates: candidates})
	}
	return pools
}
