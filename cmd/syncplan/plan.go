package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/catalog"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/errors"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/validation"
)

type planOptions struct {
	Provider string
	Branch   string
	JSON     bool
}

// planOutput is the --json form of a plan
type planOutput struct {
	Branch   string          `json:"branch"`
	Author   string          `json:"author"`
	Added    []string        `json:"added"`
	Modified []string        `json:"modified"`
	Removed  []string        `json:"removed"`
	Batches  []catalog.Batch `json:"batches"`
}

func parseEvent(provider string, payload []byte) (models.PushEvent, error) {
	switch provider {
	case "github":
		var p models.GitHubPushPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("parsing GitHub payload: %w", err)
		}
		return p, nil
	case "gitea":
		var p models.GiteaPushPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("parsing Gitea payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func runPlan(w io.Writer, payload []byte, opts planOptions) error {
	event, err := parseEvent(opts.Provider, payload)
	if err != nil {
		return err
	}

	if appErr := validation.New().ValidatePushEvent(event); appErr != nil {
		return appErr
	}

	if opts.Branch != "" && event.GetBranch() != opts.Branch {
		return errors.BranchMismatch(event.GetAuthorName(), event.GetBranch(), opts.Branch)
	}

	cs, batches := catalog.Plan(event.GetFileChanges())

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(planOutput{
			Branch:   event.GetBranch(),
			Author:   event.GetAuthorName(),
			Added:    cs.AddedPaths(),
			Modified: cs.ModifiedPaths(),
			Removed:  cs.RemovedPaths(),
			Batches:  batches,
		})
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "Push to %s by %s (%d commits)\n", event.GetBranch(), event.GetAuthorName(), event.GetCommitCount())

	if cs.IsEmpty() {
		fmt.Fprintln(w, "No catalog changes")
		return nil
	}

	printPaths(w, green, "added", "+", cs.AddedPaths())
	printPaths(w, yellow, "modified", "~", cs.ModifiedPaths())
	printPaths(w, red, "removed", "-", cs.RemovedPaths())

	if len(batches) > 0 {
		bold.Fprintf(w, "\nUpload batches\n")
		for i, b := range batches {
			cyan.Fprintf(w, "  %d. depth %d\n", i+1, b.Depth)
			for _, p := range b.Paths {
				fmt.Fprintf(w, "       %s\n", p)
			}
		}
	}

	if removed := cs.RemovedPaths(); len(removed) > 0 {
		bold.Fprintf(w, "\nDeletions after uploads: %d\n", len(removed))
	}

	return nil
}

func printPaths(w io.Writer, c *color.Color, title, mark string, paths []string) {
	if len(paths) == 0 {
		return
	}
	c.Fprintf(w, "%s (%d)\n", title, len(paths))
	for _, p := range paths {
		c.Fprintf(w, "  %s %s\n", mark, p)
	}
}
