package assessment

import "sort"

// WeakPartThreshold is the exclusive upper bound of a weak part's accuracy.
const WeakPartThreshold = 0.60

// WeakParts returns parts below the threshold, weakest first; ties keep
// canonical part order.
func WeakParts(parts map[Part]PartStat) []Part {
	weak := make([]Part, 0, len(parts))
	for p, ps := range parts {
		if ps.Acc < WeakPartThreshold {
			weak = append(weak, p)
		}
	}
	sort.Slice(weak, func(i, j int) bool { return partLess(weak[i], weak[j]) })
	sort.SliceStable(weak, func(i, j int) bool {
		return parts[weak[i]].Acc < parts[weak[j]].Acc
	})
	return weak
}
