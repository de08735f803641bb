package models

import (
	"fmt"
	"strings"
)

// Sync statuses
const (
	SyncStatusSynced  = "synced"
	SyncStatusPartial = "partial"
	SyncStatusAborted = "aborted"
	SyncStatusNoop    = "noop"
)

// maxListedPaths limits how many paths a summary lists per section
const maxListedPaths = 20

// SyncReport describes one executed sync
type SyncReport struct {
	Status     string        `json:"status"`
	Repository string        `json:"repository,omitempty"`
	Branch     string        `json:"branch"`
	Author     string        `json:"author,omitempty"`
	Commits    int           `json:"commits"`
	Added      []string      `json:"added"`
	Modified   []string      `json:"modified"`
	Removed    []string      `json:"removed"`
	Batches    []BatchReport `json:"batches"`
	Uploaded   []string      `json:"uploaded"`
	Deleted    []string      `json:"deleted"`
	Skipped    []string      `json:"skipped,omitempty"`
	Failures   []Failure     `json:"failures,omitempty"`
	Aborted    bool          `json:"aborted"`
	DurationMS int64         `json:"duration_ms"`
}

// BatchReport is one planned upload batch
type BatchReport struct {
	Depth int      `json:"depth"`
	Paths []string `json:"paths"`
}

// Failure is a path that could not be synced
type Failure struct {
	Path      string `json:"path"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// Failed reports whether any operation failed
func (r *SyncReport) Failed() bool {
	return len(r.Failures) > 0
}

// Summary renders the report as a chat message
func (r *SyncReport) Summary() string {
	var sb strings.Builder

	icon := "✅"
	switch r.Status {
	case SyncStatusPartial:
		icon = "⚠️"
	case SyncStatusAborted:
		icon = "❌"
	}

	sb.WriteString(fmt.Sprintf("%s Catalog sync *%s*", icon, r.Status))
	if r.Repository != "" {
		sb.WriteString(fmt.Sprintf(" for *%s*", r.Repository))
	}
	sb.WriteString("\n\n```")
	sb.WriteString(fmt.Sprintf("👤 Author : %s\n", r.Author))
	sb.WriteString(fmt.Sprintf("🌿 Branch : %s\n", r.Branch))
	sb.WriteString(fmt.Sprintf("📊 Commits: %d\n", r.Commits))
	sb.WriteString(fmt.Sprintf("📦 Batches: %d\n", len(r.Batches)))
	sb.WriteString("```\n")

	writePaths(&sb, "⬆️ Uploaded", r.Uploaded)
	writePaths(&sb, "🗑️ Deleted", r.Deleted)
	writePaths(&sb, "⏭️ Skipped", r.Skipped)

	if len(r.Failures) > 0 {
		sb.WriteString(fmt.Sprintf("\n*Failures: %d*\n", len(r.Failures)))
		for i, f := range r.Failures {
			if i >= maxListedPaths {
				sb.WriteString(fmt.Sprintf("   _...and %d more_\n", len(r.Failures)-maxListedPaths))
				break
			}
			sb.WriteString(fmt.Sprintf("   • %s %s: %s\n", f.Operation, f.Path, f.Error))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func writePaths(sb *strings.Builder, title string, paths []string) {
	if len(paths) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("\n*%s: %d*\n", title, len(paths)))
	for i, p := range paths {
		if i >= maxListedPaths {
			sb.WriteString(fmt.Sprintf("   _...and %d more_\n", len(paths)-maxListedPaths))
			break
		}
		sb.WriteString(fmt.Sprintf("   • %s\n", p))
	}
}
