package models

import (
	"strings"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/catalog"
)

// GitHubPushPayload represents the GitHub push webhook payload
type GitHubPushPayload struct {
	Ref        string           `json:"ref"`
	Before     string           `json:"before"`
	After      string           `json:"after"`
	Compare    string           `json:"compare"`
	Commits    []GitHubCommit   `json:"commits"`
	HeadCommit *GitHubCommit    `json:"head_commit"`
	Repository GitHubRepository `json:"repository"`
	Pusher     GitHubPusher     `json:"pusher"`
	Sender     GitHubUser       `json:"sender"`
	Created    bool             `json:"created"`
	Deleted    bool             `json:"deleted"`
	Forced     bool             `json:"forced"`
}

// GitHubCommit represents a commit in the GitHub webhook
type GitHubCommit struct {
	ID        string           `json:"id"`
	TreeID    string           `json:"tree_id"`
	Distinct  bool             `json:"distinct"`
	Message   string           `json:"message"`
	Timestamp string           `json:"timestamp"`
	URL       string           `json:"url"`
	Author    GitHubCommitUser `json:"author"`
	Committer GitHubCommitUser `json:"committer"`
	Added     []string         `json:"added"`
	Removed   []string         `json:"removed"`
	Modified  []string         `json:"modified"`
}

// GitHubCommitUser represents a user in a commit
type GitHubCommitUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// GitHubRepository represents a repository in the GitHub webhook
type GitHubRepository struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Private       bool       `json:"private"`
	Owner         GitHubUser `json:"owner"`
	HTMLURL       string     `json:"html_url"`
	URL           string     `json:"url"`
	DefaultBranch string     `json:"default_branch"`
	CloneURL      string     `json:"clone_url"`
}

// GitHubUser represents a user in the GitHub webhook
type GitHubUser struct {
	Login   string `json:"login"`
	ID      int    `json:"id"`
	HTMLURL string `json:"html_url"`
	Type    string `json:"type"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
}

// GitHubPusher represents the pusher in the GitHub webhook
type GitHubPusher struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetRef returns the full git ref
func (p GitHubPushPayload) GetRef() string {
	return p.Ref
}

// GetRepositoryName returns the full repository name
func (p GitHubPushPayload) GetRepositoryName() string {
	return p.Repository.FullName
}

// GetPusherName returns the pusher's name
func (p GitHubPushPayload) GetPusherName() string {
	// Prefer committer name from first commit, fallback to pusher
	if len(p.Commits) > 0 && p.Commits[0].Committer.Name != "" {
		return p.Commits[0].Committer.Name
	}
	return p.Pusher.Name
}

// GetAuthorName returns the author of the first commit
func (p GitHubPushPayload) GetAuthorName() string {
	if len(p.Commits) > 0 && p.Commits[0].Author.Name != "" {
		return p.Commits[0].Author.Name
	}
	return p.Pusher.Name
}

// GetBranch returns the branch name
func (p GitHubPushPayload) GetBranch() string {
	return BranchFromRef(p.Ref)
}

// GetCommitCount returns the number of commits
func (p GitHubPushPayload) GetCommitCount() int {
	return len(p.Commits)
}

// GetCommits returns commits in a generic format
func (p GitHubPushPayload) GetCommits() []CommitInfo {
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
func (p GitHubPushPayload) GetCompareURL() string {
	return p.Compare
}

// GetFileChanges returns the per-commit file lists, oldest commit first
func (p GitHubPushPayload) GetFileChanges() []catalog.CommitChanges {
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
func (p GitHubPushPayload) GetBaseURL() string {
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
