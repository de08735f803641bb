package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/config"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/errors"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
)

const secret = "It's a Secret to Everybody"

const pushBody = `{
  "ref": "refs/heads/master",
  "commits": [
    {"id": "c1", "url": "https://github.com/org/catalog/commit/c1", "author": {"name": "Andre"},
     "added": ["table.json"], "removed": [], "modified": []}
  ],
  "repository": {"full_name": "org/catalog"}
}`

type fakeSyncer struct {
	report *models.SyncReport
	err    error
	events []models.PushEvent
}

func (f *fakeSyncer) Sync(_ context.Context, event models.PushEvent) (*models.SyncReport, error) {
	f.events = append(f.events, event)
	return f.report, f.err
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	status   models.NotifierStatus
}

func (f *fakeNotifier) Notify(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) Status() models.NotifierStatus {
	return f.status
}

type fakePinger struct{ err error }

func (f fakePinger) Health(context.Context) error { return f.err }

func testConfig() *config.Config {
	return &config.Config{
		Security:    config.SecurityConfig{MaxBodyBytes: 1 << 20},
		Webhook:     config.WebhookConfig{RequireSignature: true, Secret: secret},
		Source:      config.SourceConfig{URL: "https://src.example.com/", Branch: "master"},
		Destination: config.DestinationConfig{URL: "https://dst.example.com/"},
	}
}

func syncedReport() *models.SyncReport {
	return &models.SyncReport{
		Status:   models.SyncStatusSynced,
		Branch:   "master",
		Author:   "Andre",
		Commits:  1,
		Added:    []string{"table.json"},
		Uploaded: []string{"table.json"},
	}
}

func newTestHandler(cfg *config.Config, syncer Syncer, notifier *fakeNotifier) *Handler {
	if notifier == nil {
		return New(cfg, syncer, fakePinger{}, nil, logger.Nop())
	}
	return New(cfg, syncer, fakePinger{}, notifier, logger.Nop())
}

func post(h http.HandlerFunc, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/github", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) models.StatusResponse {
	t.Helper()
	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGitHubWebhook_Synced(t *testing.T) {
	syncer := &fakeSyncer{report: syncedReport()}
	notifier := &fakeNotifier{}
	h := newTestHandler(testConfig(), syncer, notifier)

	rec := post(h.GitHubWebhook, pushBody, map[string]string{
		"X-GitHub-Event":      "push",
		"X-Hub-Signature-256": githubSHA256.Sign([]byte(pushBody), secret),
	})
	h.Wait()

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeStatus(t, rec)
	assert.Equal(t, models.SyncStatusSynced, resp.Status)
	assert.Equal(t, "Andre\nSuccessfully committed to master", resp.Message)

	require.Len(t, syncer.events, 1)
	assert.Equal(t, "master", syncer.events[0].GetBranch())
	assert.Equal(t, "https://github.com/org/catalog/", syncer.events[0].GetBaseURL())

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Catalog sync *synced*")
}

func TestGitHubWebhook_Signatures(t *testing.T) {
	body := []byte(pushBody)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "sha256", headers: map[string]string{"X-Hub-Signature-256": githubSHA256.Sign(body, secret)}, want: http.StatusOK},
		{name: "legacy sha1", headers: map[string]string{"X-Hub-Signature": githubSHA1.Sign(body, secret)}, want: http.StatusOK},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong secret", headers: map[string]string{"X-Hub-Signature-256": githubSHA256.Sign(body, "nope")}, want: http.StatusUnauthorized},
		{
			name:    "digest without prefix",
			headers: map[string]string{"X-Hub-Signature-256": strings.TrimPrefix(githubSHA256.Sign(body, secret), "sha256=")},
			want:    http.StatusUnauthorized,
		},
		{
			name:    "sha1 digest under sha256 prefix",
			headers: map[string]string{"X-Hub-Signature-256": "sha256=" + strings.TrimPrefix(githubSHA1.Sign(body, secret), "sha1=")},
			want:    http.StatusUnauthorized,
		},
		{
			name:    "upper case digest",
			headers: map[string]string{"X-Hub-Signature-256": "sha256=" + strings.ToUpper(strings.TrimPrefix(githubSHA256.Sign(body, secret), "sha256="))},
			want:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := &fakeSyncer{report: syncedReport()}
			h := newTestHandler(testConfig(), syncer, &fakeNotifier{})

			rec := post(h.GitHubWebhook, pushBody, tt.headers)
			h.Wait()

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Empty(t, syncer.events)

				var resp models.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "Invalid webhook secret key", resp.Error)
				assert.Equal(t, string(errors.ErrCodeUnauthorized), resp.Code)
			}
		})
	}
}

func TestGitHubWebhook_SignatureNotRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Webhook.RequireSignature = false
	syncer := &fakeSyncer{report: syncedReport()}
	h := newTestHandler(cfg, syncer, &fakeNotifier{})

	rec := post(h.GitHubWebhook, pushBody, nil)
	h.Wait()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, syncer.events, 1)
}

func TestGiteaWebhook(t *testing.T) {
	body := `{"ref":"refs/heads/master","commits":[{"id":"g1","added":["sofa.json"]}],"pusher":{"login":"ana"}}`
	syncer := &fakeSyncer{report: syncedReport()}
	h := newTestHandler(testConfig(), syncer, &fakeNotifier{})

	rec := post(h.GiteaWebhook, body, map[string]string{
		"X-Gitea-Event":     "push",
		"X-Gitea-Signature": giteaSHA256.Sign([]byte(body), secret),
	})
	h.Wait()

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, syncer.events, 1)
	assert.Equal(t, "ana", syncer.events[0].GetAuthorName())

	// a GitHub style prefix is not accepted in the Gitea header
	rec = post(h.GiteaWebhook, body, map[string]string{
		"X-Gitea-Signature": githubSHA256.Sign([]byte(body), secret),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_EventFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Webhook.RequireSignature = false
	syncer := &fakeSyncer{report: syncedReport()}
	h := newTestHandler(cfg, syncer, &fakeNotifier{})

	rec := post(h.GitHubWebhook, `{"zen":"Keep it logically awesome."}`, map[string]string{"X-GitHub-Event": "ping"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", decodeStatus(t, rec).Status)

	rec = post(h.GitHubWebhook, `{}`, map[string]string{"X-GitHub-Event": "issues"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ignored", decodeStatus(t, rec).Status)

	assert.Empty(t, syncer.events)
}

func TestWebhook_BadRequests(t *testing.T) {
	cfg := testConfig()
	cfg.Webhook.RequireSignature = false
	cfg.Security.MaxBodyBytes = 64

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "not json", body: `{"ref":`, wantMsg: "Invalid webhook payload"},
		{name: "missing ref", body: `{"commits":[]}`, wantMsg: "'ref' field is required"},
		{name: "too large", body: `{"ref":"refs/heads/master","commits":[` + strings.Repeat(" ", 100) + `]}`, wantMsg: "exceeds 64 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := &fakeSyncer{report: syncedReport()}
			h := newTestHandler(cfg, syncer, &fakeNotifier{})

			rec := post(h.GitHubWebhook, tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.wantMsg)
			assert.Empty(t, syncer.events)
		})
	}
}

func TestWebhook_UncleanPathOutsideCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Webhook.RequireSignature = false

	syncer := &fakeSyncer{report: syncedReport()}
	h := newTestHandler(cfg, syncer, nil)

	body := `{"ref":"refs/heads/master","commits":[{"id":"852d","added":["table.json","docs\\windows notes.txt"]}]}`
	rec := post(h.GitHubWebhook, body, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, syncer.events, 1)
	assert.Equal(t, models.SyncStatusSynced, decodeStatus(t, rec).Status)
}

func TestWebhook_UncleanCatalogPath(t *testing.T) {
	cfg := testConfig()
	cfg.Webhook.RequireSignature = false

	syncer := &fakeSyncer{report: syncedReport()}
	h := newTestHandler(cfg, syncer, nil)

	body := `{"ref":"refs/heads/master","commits":[{"id":"852d","added":["t/files/../x.png"]}]}`
	rec := post(h.GitHubWebhook, body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid path in push")
	assert.Empty(t, syncer.events)
}

func TestWebhook_SyncOutcomes(t *testing.T) {
	aborted := syncedReport()
	aborted.Status = models.SyncStatusAborted
	aborted.Aborted = true

	tests := []struct {
		name       string
		syncer     *fakeSyncer
		wantCode   int
		wantStatus string
		wantMsg    string
		notified   bool
	}{
		{
			name:       "wrong branch",
			syncer:     &fakeSyncer{err: errors.BranchMismatch("Andre", "develop", "master")},
			wantCode:   http.StatusOK,
			wantStatus: "ignored",
			wantMsg:    "Andre wrong branch! You committed to develop. Only accepting commits to master branch.",
		},
		{
			name:       "aborted plan",
			syncer:     &fakeSyncer{report: aborted, err: errors.PlanExecutionFailed(stderrors.New("upload b.json: status 500"))},
			wantCode:   http.StatusBadGateway,
			wantStatus: models.SyncStatusAborted,
			wantMsg:    "Failed to apply changes to API",
			notified:   true,
		},
		{
			name:       "nothing to sync",
			syncer:     &fakeSyncer{report: &models.SyncReport{Status: models.SyncStatusNoop, Branch: "master", Author: "Andre"}},
			wantCode:   http.StatusOK,
			wantStatus: models.SyncStatusNoop,
			wantMsg:    "Andre\nSuccessfully committed to master",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			h := newTestHandler(testConfig(), tt.syncer, notifier)

			rec := post(h.GitHubWebhook, pushBody, map[string]string{
				"X-Hub-Signature-256": githubSHA256.Sign([]byte(pushBody), secret),
			})
			h.Wait()

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeStatus(t, rec)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.notified, len(notifier.messages) == 1)
		})
	}
}

func TestWebhook_ErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "configuration missing", err: errors.ConfigurationMissing("SOURCE_URL"), wantCode: http.StatusInternalServerError, wantMsg: "SOURCE_URL not set"},
		{name: "destination down", err: errors.UpstreamUnavailable(stderrors.New("status 403")), wantCode: http.StatusServiceUnavailable, wantMsg: "Failed to connect to API"},
		{name: "plain error", err: stderrors.New("boom"), wantCode: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Webhook.RequireSignature = false
			notifier := &fakeNotifier{}
			h := newTestHandler(cfg, &fakeSyncer{err: tt.err}, notifier)

			rec := post(h.GitHubWebhook, pushBody, nil)
			h.Wait()

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Empty(t, notifier.messages)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	notifier := &fakeNotifier{status: models.NotifierStatus{Enabled: true, Connected: true, LoggedIn: true}}
	h := newTestHandler(testConfig(), &fakeSyncer{}, notifier)

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Ready)
	require.NotNil(t, resp.Notifier)
	assert.True(t, resp.Notifier.Connected)

	cfg := testConfig()
	cfg.Destination.URL = ""
	h = newTestHandler(cfg, &fakeSyncer{}, &fakeNotifier{})

	rec = httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	resp = models.HealthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, "DESTINATION_URL", resp.Missing)
	assert.Nil(t, resp.Notifier)
}

func TestHealthCheck_Detailed(t *testing.T) {
	h := New(testConfig(), &fakeSyncer{}, fakePinger{err: stderrors.New("health failed with status 403")}, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health?detailed=true", nil))

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, "health failed with status 403", resp.Destination)
}

func TestHealthCheck_DetailedKeepsMissingSetting(t *testing.T) {
	cfg := testConfig()
	cfg.Destination.URL = ""
	h := newTestHandler(cfg, &fakeSyncer{}, nil)

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health?detailed=true", nil))

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Ready)
	assert.Equal(t, "DESTINATION_URL", resp.Missing)
	assert.Equal(t, "not configured", resp.Destination)
}

func TestHealthCheck_DetailedHealthy(t *testing.T) {
	h := newTestHandler(testConfig(), &fakeSyncer{}, nil)

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health?detailed=true", nil))

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Ready)
	assert.Equal(t, "ok", resp.Destination)
}

func TestInfo(t *testing.T) {
	h := newTestHandler(testConfig(), &fakeSyncer{}, nil)

	rec := httptest.NewRecorder()
	h.Info(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog sync webhook")
}
