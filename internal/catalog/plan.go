package catalog

import (
	"slices"
	"strings"
)

// Batch is a group of paths at the same depth. Paths within a batch have no
// ordering constraints among themselves.
type Batch struct {
	Depth int      `json:"depth"`
	Paths []string `json:"paths"`
}

// Depth returns the number of directory separators in a path
func Depth(path string) int {
	return strings.Count(path, "/")
}

// PlanBatches groups paths by depth and orders the groups by ascending depth.
// Only observed depths produce a batch, and each batch keeps the input order.
// Executing the batches in order, each completed before the next starts,
// guarantees a parent is written before any of its children.
func PlanBatches(paths []string) []Batch {
	index := make(map[int]int)
	batches := make([]Batch, 0)

	for _, p := range paths {
		d := Depth(p)
		i, ok := index[d]
		if !ok {
			i = len(batches)
			index[d] = i
			batches = append(batches, Batch{Depth: d})
		}
		batches[i].Paths = append(batches[i].Paths, p)
	}

	slices.SortStableFunc(batches, func(a, b Batch) int {
		return a.Depth - b.Depth
	})

	return batches
}

// Plan resolves the commits and plans the uploads of the surviving added and
// modified paths
func Plan(commits []CommitChanges) (ChangeSet, []Batch) {
	cs := Resolve(commits)
	return cs, PlanBatches(cs.UploadPaths())
}
