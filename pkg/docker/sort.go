package docker

import (
	"sort"
	"strconv"
	"strings"

	"github.com/thanhnhan2tn/package-updater/pkg/pm"
)

// CompareTags orders a before b when a is the newer tag. Two strict
// MAJOR.MINOR.PATCH tags compare numerically; any other pair falls back to
// reverse string order.
func CompareTags(a, b string) int {
	if pm.IsStrictVersion(a) && pm.IsStrictVersion(b) {
		pa, pb := strings.Split(a, "."), strings.Split(b, ".")
		for i := range pa {
			x, _ := strconv.Atoi(pa[i])
			y, _ := strconv.Atoi(pb[i])
			if x != y {
				if x > y {
					return -1
				}
				return 1
			}
		}
		return 0
	}
	return strings.Compare(b, a)
}

// SortTags sorts tags newest first.
func SortTags(tags []string) {
	sort.SliceStable(tags, func(i, j int) bool {
		return CompareTags(tags[i], tags[j]) < 0
	})
}
