package catalog

import "fmt"

// Category is the kind of change recorded for a path. Higher values win rank ties.
type Category int

const (
	Added Category = iota
	Modified
	Removed
)

// String returns the lower-case category name
func (c Category) String() string {
	switch c {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Rank is the zero-based position of a commit within a push, oldest first
type Rank int

// CommitChanges holds the paths one commit touched, per category
type CommitChanges struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
}

// Record is the authoritative change for a single path
type Record struct {
	Category Category
	Rank     Rank
}

// supersedes compares on (rank, category priority)
func (r Record) supersedes(other Record) bool {
	if r.Rank != other.Rank {
		return r.Rank > other.Rank
	}
	return r.Category > other.Category
}

// ChangeSet is the net result of a sequence of commits. Added, Modified and Removed
// are pairwise disjoint.
type ChangeSet struct {
	Added    map[string]Rank
	Modified map[string]Rank
	Removed  map[string]Rank

	// order keeps paths in the order they were first mentioned
	order []string
}

// Resolve folds the commits, oldest first, into one final action per whitelisted path.
// Within a commit, categories are applied in the order added, modified, removed, so a
// later category overrides an earlier one for the same path. Missing lists are empty.
func Resolve(commits []CommitChanges) ChangeSet {
	records := make(map[string]Record)
	var order []string

	apply := func(paths []string, category Category, rank Rank) {
		for _, p := range paths {
			candidate := Record{Category: category, Rank: rank}
			existing, seen := records[p]
			if !seen {
				order = append(order, p)
			}
			if !seen || candidate.supersedes(existing) {
				records[p] = candidate
			}
		}
	}

	for i, commit := range commits {
		rank := Rank(i)
		apply(commit.Added, Added, rank)
		apply(commit.Modified, Modified, rank)
		apply(commit.Removed, Removed, rank)
	}

	cs := ChangeSet{
		Added:    make(map[string]Rank),
		Modified: make(map[string]Rank),
		Removed:  make(map[string]Rank),
		order:    make([]string, 0, len(order)),
	}
	for _, p := range order {
		if !IsWhitelisted(p) {
			continue
		}
		rec := records[p]
		switch rec.Category {
		case Added:
			cs.Added[p] = rec.Rank
		case Modified:
			cs.Modified[p] = rec.Rank
		case Removed:
			cs.Removed[p] = rec.Rank
		}
		cs.order = append(cs.order, p)
	}

	return cs
}

// Lookup returns the final record for a path, if it survived resolution
func (cs ChangeSet) Lookup(path string) (Record, bool) {
	if r, ok := cs.Added[path]; ok {
		return Record{Category: Added, Rank: r}, true
	}
	if r, ok := cs.Modified[path]; ok {
		return Record{Category: Modified, Rank: r}, true
	}
	if r, ok := cs.Removed[path]; ok {
		return Record{Category: Removed, Rank: r}, true
	}
	return Record{}, false
}

// Len returns the number of paths across all categories
func (cs ChangeSet) Len() int {
	return len(cs.Added) + len(cs.Modified) + len(cs.Removed)
}

// IsEmpty reports whether nothing relevant changed
func (cs ChangeSet) IsEmpty() bool {
	return cs.Len() == 0
}

// AddedPaths returns the added paths in first-mention order
func (cs ChangeSet) AddedPaths() []string {
	return cs.paths(Added)
}

// ModifiedPaths returns the modified paths in first-mention order
func (cs ChangeSet) ModifiedPaths() []string {
	return cs.paths(Modified)
}

// RemovedPaths returns the removed paths in first-mention order
func (cs ChangeSet) RemovedPaths() []string {
	return cs.paths(Removed)
}

// UploadPaths returns added and modified paths, the input of the batch planner
func (cs ChangeSet) UploadPaths() []string {
	paths := make([]string, 0, len(cs.Added)+len(cs.Modified))
	for _, p := range cs.order {
		if _, ok := cs.Added[p]; ok {
			paths = append(paths, p)
		} else if _, ok := cs.Modified[p]; ok {
			paths = append(paths, p)
		}
	}
	return paths
}

func (cs ChangeSet) paths(category Category) []string {
	paths := make([]string, 0)
	for _, p := range cs.order {
		if rec, ok := cs.Lookup(p); ok && rec.Category == category {
			paths = append(paths, p)
		}
	}
	return paths
}
