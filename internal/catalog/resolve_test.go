package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Empty(t *testing.T) {
	cs := Resolve(nil)

	assert.Empty(t, cs.Added)
	assert.Empty(t, cs.Modified)
	assert.Empty(t, cs.Removed)
	assert.True(t, cs.IsEmpty())
}

func TestResolve_SingleCommitAdd(t *testing.T) {
	cs := Resolve([]CommitChanges{
		{Added: []string{"table.json"}, Removed: []string{}, Modified: []string{}},
	})

	assert.Equal(t, map[string]Rank{"table.json": 0}, cs.Added)
	assert.Empty(t, cs.Modified)
	assert.Empty(t, cs.Removed)
}

func TestResolve_SingleCommitAllCategories(t *testing.T) {
	cs := Resolve([]CommitChanges{
		{
			Added:    []string{"table.json", "table2.json"},
			Removed:  []string{"table3.json"},
			Modified: []string{"table4.json"},
		},
	})

	assert.Equal(t, []string{"table.json", "table2.json"}, cs.AddedPaths())
	assert.Equal(t, []string{"table4.json"}, cs.ModifiedPaths())
	assert.Equal(t, []string{"table3.json"}, cs.RemovedPaths())
}

func TestResolve_MissingListsAreEmpty(t *testing.T) {
	cs := Resolve([]CommitChanges{
		{Modified: []string{"chair.json"}},
		{},
	})

	assert.Equal(t, map[string]Rank{"chair.json": 0}, cs.Modified)
	assert.Empty(t, cs.Added)
	assert.Empty(t, cs.Removed)
}

func TestResolve_CrossCommitHistory(t *testing.T) {
	commits := []CommitChanges{
		{
			Added:    []string{"table.json", "table4.json", "table2.json"},
			Removed:  []string{},
			Modified: []string{"lean.json"},
		},
		{
			Added:    []string{"chair.json"},
			Removed:  []string{"chair.json", "table.json"},
			Modified: []string{"table.json", "table4.json", "table2.json"},
		},
		{
			Added:    []string{"table.json"},
			Removed:  []string{"table4.json", "table2.json"},
			Modified: []string{"luan.jsaon"},
		},
	}

	cs := Resolve(commits)

	rec, ok := cs.Lookup("table.json")
	require.True(t, ok)
	assert.Equal(t, Record{Category: Added, Rank: 2}, rec)

	rec, ok = cs.Lookup("chair.json")
	require.True(t, ok)
	assert.Equal(t, Record{Category: Removed, Rank: 1}, rec, "removed wins a same-commit tie with added")

	assert.Equal(t, Rank(2), cs.Removed["table4.json"])
	assert.Equal(t, Rank(2), cs.Removed["table2.json"])
	assert.Equal(t, Rank(0), cs.Modified["lean.json"])

	_, ok = cs.Lookup("luan.jsaon")
	assert.False(t, ok, "non-whitelisted paths never surface")

	assert.Equal(t, []string{"table.json"}, cs.AddedPaths())
	assert.Equal(t, []string{"lean.json"}, cs.ModifiedPaths())
	assert.Equal(t, []string{"table4.json", "table2.json", "chair.json"}, cs.RemovedPaths())
}

func TestResolve_ModifiedInLaterCommit(t *testing.T) {
	cs := Resolve([]CommitChanges{
		{Added: []string{"table.json", "table4.json", "table2.json"}, Modified: []string{"lean.json"}},
		{Added: []string{"chair.json"}, Modified: []string{"table.json", "table4.json", "table2.json"}},
		{Added: []string{"table.json"}, Removed: []string{"table4.json", "table2.json"}},
	})

	assert.Equal(t, Rank(2), cs.Added["table.json"])
	assert.Equal(t, Rank(1), cs.Added["chair.json"])
	assert.Equal(t, Rank(2), cs.Removed["table4.json"])
}

func TestResolve_TieBreakPriority(t *testing.T) {
	tests := []struct {
		name   string
		commit CommitChanges
		want   Category
	}{
		{"added and modified", CommitChanges{Added: []string{"a.json"}, Modified: []string{"a.json"}}, Modified},
		{"modified and removed", CommitChanges{Modified: []string{"a.json"}, Removed: []string{"a.json"}}, Removed},
		{"added and removed", CommitChanges{Added: []string{"a.json"}, Removed: []string{"a.json"}}, Removed},
		{"all three", CommitChanges{Added: []string{"a.json"}, Modified: []string{"a.json"}, Removed: []string{"a.json"}}, Removed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := Resolve([]CommitChanges{tt.commit})
			rec, ok := cs.Lookup("a.json")
			require.True(t, ok)
			assert.Equal(t, tt.want, rec.Category)
			assert.Equal(t, Rank(0), rec.Rank)
		})
	}
}

func TestResolve_ToggleResolvesToLatest(t *testing.T) {
	cs := Resolve([]CommitChanges{
		{Added: []string{"t.json"}},
		{Removed: []string{"t.json"}},
		{Added: []string{"t.json"}},
		{Removed: []string{"t.json"}},
		{Added: []string{"t.json"}},
	})

	assert.Equal(t, map[string]Rank{"t.json": 4}, cs.Added)
	assert.Empty(t, cs.Removed)
}

func TestResolve_LaterRankBeatsHigherPriority(t *testing.T) {
	cs := Resolve([]CommitChanges{
		{Removed: []string{"t.json"}},
		{Added: []string{"t.json"}},
	})

	assert.Equal(t, map[string]Rank{"t.json": 1}, cs.Added)
	assert.Empty(t, cs.Removed)
}

func TestResolve_IdempotentAndDisjoint(t *testing.T) {
	commits := []CommitChanges{
		{Added: []string{"a.json", "x/files/1.png"}, Modified: []string{"b.json"}},
		{Removed: []string{"a.json"}, Modified: []string{"x/files/1.png", "c.json"}},
		{Added: []string{"c.json", "a.json"}, Removed: []string{"b.json"}},
	}

	first := Resolve(commits)
	second := Resolve(commits)
	assert.Equal(t, first, second)

	for p := range first.Added {
		assert.NotContains(t, first.Modified, p)
		assert.NotContains(t, first.Removed, p)
	}
	for p := range first.Modified {
		assert.NotContains(t, first.Removed, p)
	}
	assert.Equal(t, 4, first.Len())
}

func TestChangeSet_UploadPaths(t *testing.T) {
	cs := Resolve([]CommitChanges{
		{Added: []string{"a.json"}, Modified: []string{"b.json"}, Removed: []string{"c.json"}},
		{Added: []string{"d/files/e.bin"}},
	})

	assert.Equal(t, []string{"a.json", "b.json", "d/files/e.bin"}, cs.UploadPaths())
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "category(9)", Category(9).String())
}
