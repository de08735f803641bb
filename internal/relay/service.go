package relay

import (
	"context"
	"strings"
	"time"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/catalog"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/config"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/errors"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/upstream"
)

// Service relays push events to the content API
type Service struct {
	cfg      *config.Config
	dest     Destination
	executor *Executor
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates a relay service
func NewService(cfg *config.Config, source Source, dest Destination, log *logger.Logger) *Service {
	return &Service{
		cfg:      cfg,
		dest:     dest,
		executor: NewExecutor(source, dest, cfg.Sync.Parallelism, cfg.Sync.AbortOnFailure, log.With("component", "executor")),
		log:      log,
		now:      time.Now,
	}
}

// Sync resolves the push and applies it. Rejections are returned as *errors.AppError.
// An aborted plan returns both the report and a PLAN_EXECUTION_FAILED error.
func (s *Service) Sync(ctx context.Context, event models.PushEvent) (*models.SyncReport, error) {
	if missing := s.cfg.MissingSyncSetting(); missing != "" {
		return nil, errors.ConfigurationMissing(missing)
	}

	branch := event.GetBranch()
	if branch != s.cfg.Source.Branch {
		return nil, errors.BranchMismatch(event.GetAuthorName(), branch, s.cfg.Source.Branch)
	}

	if err := s.dest.Health(ctx); err != nil {
		return nil, errors.UpstreamUnavailable(err)
	}

	start := s.now()
	cs, batches := catalog.Plan(event.GetFileChanges())

	report := &models.SyncReport{
		Status:     models.SyncStatusNoop,
		Repository: event.GetRepositoryName(),
		Branch:     branch,
		Author:     event.GetAuthorName(),
		Commits:    event.GetCommitCount(),
		Added:      cs.AddedPaths(),
		Modified:   cs.ModifiedPaths(),
		Removed:    cs.RemovedPaths(),
		Batches:    make([]models.BatchReport, len(batches)),
		Uploaded:   []string{},
		Deleted:    []string{},
	}
	for i, b := range batches {
		report.Batches[i] = models.BatchReport{Depth: b.Depth, Paths: b.Paths}
	}

	if cs.IsEmpty() {
		s.log.Infof("Push to %s by %s has no catalog changes", branch, report.Author)
		return report, nil
	}

	s.log.Infof("Syncing %d catalog change(s) in %d batch(es) from %s", cs.Len(), len(batches), report.Author)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Sync.Timeout)
	defer cancel()

	baseURL := event.GetBaseURL()
	outcome := s.executor.Execute(ctx, Job{
		Changes: cs,
		Batches: batches,
		Meta: func(path string) upstream.PutMeta {
			return upstream.PutMeta{
				RepositoryURL: baseURL,
				ServingURL:    ServingURL(s.cfg.Destination.ServingBaseURL, baseURL, branch, path),
			}
		},
	})

	report.Uploaded = append(report.Uploaded, outcome.Uploaded...)
	report.Deleted = append(report.Deleted, outcome.Deleted...)
	report.Skipped = outcome.Skipped
	report.Failures = outcome.Failures
	report.Aborted = outcome.Aborted
	report.DurationMS = s.now().Sub(start).Milliseconds()

	switch {
	case outcome.Aborted:
		report.Status = models.SyncStatusAborted
	case len(outcome.Failures) > 0:
		report.Status = models.SyncStatusPartial
	default:
		report.Status = models.SyncStatusSynced
	}

	s.log.Infof("Sync %s: %d uploaded, %d deleted, %d failed, %d skipped",
		report.Status, len(report.Uploaded), len(report.Deleted), len(report.Failures), len(report.Skipped))

	if outcome.Aborted {
		return report, errors.PlanExecutionFailed(outcome.Err())
	}
	return report, nil
}

// ServingURL returns the public URL a catalog document is served from. Without a
// configured serving base it points at the raw file in the pushed repository.
func ServingURL(servingBase, repositoryURL, branch, path string) string {
	if servingBase != "" {
		return strings.TrimSuffix(servingBase, "/") + "/" + path
	}
	if repositoryURL == "" {
		return ""
	}
	return strings.TrimSuffix(repositoryURL, "/") + "/raw/" + branch + "/" + path
}
