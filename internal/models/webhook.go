package models

import (
	"strings"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/catalog"
)

// CommitInfo holds common commit information across different webhook providers
type CommitInfo struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// PushEvent is the provider-independent view of a push webhook
type PushEvent interface {
	GetRef() string
	GetRepositoryName() string
	GetPusherName() string
	GetAuthorName() string
	GetBranch() string
	GetCommitCount() int
	GetCommits() []CommitInfo
	GetCompareURL() string
	GetFileChanges() []catalog.CommitChanges
	GetBaseURL() string
}

// BranchFromRef strips refs/heads/ from a ref. Other refs yield their last segment.
func BranchFromRef(ref string) string {
	if b, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
		return b
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// BaseURLFromCommitURL cuts a commit URL just before its commit/ segment,
// keeping the trailing slash. It returns "" when the URL has no such segment.
func BaseURLFromCommitURL(commitURL string) string {
	i := strings.Index(commitURL, "/commit/")
	if i < 0 {
		return ""
	}
	return commitURL[:i+1]
}
