package models

import (
	"strings"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/catalog"
)

// GiteaPushPayload represents the Gitea push webhook payload
type GiteaPushPayload struct {
	Ref        string          `json:"ref"`
	Before     string          `json:"before"`
	After      string          `json:"after"`
	CompareURL string          `json:"compare_url"`
	Commits    []GiteaCommit   `json:"commits"`
	Repository GiteaRepository `json:"repository"`
	Pusher     GiteaUser       `json:"pusher"`
	Sender     GiteaUser       `json:"sender"`
}

// GiteaCommit represents a commit in the Gitea webhook
type GiteaCommit struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	URL       string    `json:"url"`
	Author    GiteaUser `json:"author"`
	Committer GiteaUser `json:"committer"`
	Timestamp string    `json:"timestamp"`
	Added     []string  `json:"added"`
	Removed   []string  `json:"removed"`
	Modified  []string  `json:"modified"`
}

// GiteaRepository represents a repository in the Gitea webhook
type GiteaRepository struct {
	ID            int       `json:"id"`
	Owner         GiteaUser `json:"owner"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Private       bool      `json:"private"`
	HTMLURL       string    `json:"html_url"`
	CloneURL      string    `json:"clone_url"`
	DefaultBranch string    `json:"default_branch"`
}

// GiteaUser represents a user in the Gitea webhook
type GiteaUser struct {
	ID       int    `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// GetRef returns the full git ref
func (p GiteaPushPayload) GetRef() string {
	return p.Ref
}

// GetRepositoryName returns the full repository name
func (p GiteaPushPayload) GetRepositoryName() string {
	return p.Repository.FullName
}

// GetPusherName returns the pusher's name
func (p GiteaPushPayload) GetPusherName() string {
	if len(p.Commits) > 0 && p.Commits[0].Committer.Name != "" {
		return p.Commits[0].Committer.Name
	}
	if p.Pusher.FullName != "" {
		return p.Pusher.FullName
	}
	return p.Pusher.Login
}

// GetAuthorName returns the author of the first commit
func (p GiteaPushPayload) GetAuthorName() string {
	if len(p.Commits) > 0 && p.Commits[0].Author.Name != "" {
		return p.Commits[0].Author.Name
	}
	return p.GetPusherName()
}

// GetBranch returns the branch name
func (p GiteaPushPayload) GetBranch() string {
	return BranchFromRef(p.Ref)
}

// GetCommitCount returns the number of commits
func (p GiteaPushPayload) GetCommitCount() int {
	return len(p.Commits)
}

// GetCommits returns commits in a generic format
func (p GiteaPushPayload) GetCommits() []CommitInfo {
	commits := make([]CommitInfo, len(p.Commits))
	for i, c := range p.Commits {
		commits[i] = CommitInfo{
			ID:      c.ID,
			Message: c.Message,
			URL:     c.URL,
		}
	}
	return commits
}

// GetCompareURL returns the compare URL
func (p GiteaPushPayload) GetCompareURL() string {
	return p.CompareURL
}

// GetFileChanges returns the per-commit file lists, oldest commit first
func (p GiteaPushPayload) GetFileChanges() []catalog.CommitChanges {
	changes := make([]catalog.CommitChanges, len(p.Commits))
	for i, c := range p.Commits {
		changes[i] = catalog.CommitChanges{
			Added:    c.Added,
			Removed:  c.Removed,
			Modified: c.Modified,
		}
	}
	return changes
}

// GetBaseURL returns the repository URL derived from the first commit URL
func (p GiteaPushPayload) GetBaseURL() string {
	if len(p.Commits) > 0 {
		if base := BaseURLFromCommitURL(p.Commits[0].URL); base != "" {
			return base
		}
	}
	if p.Repository.HTMLURL != "" {
		return strings.TrimSuffix(p.Repository.HTMLURL, "/") + "/"
	}
	return ""
}
