// Package jira is a typed façade over the Jira REST v2 API. Every operation
// is fail-soft: on any failure it logs and returns a zero value so that the
// session machinery never has to unwind because the tracker is down.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	// maxRetries caps retry attempts for transient failures.
	maxRetries = 3

	apiPrefix = "/rest/api/2"

	// worklogStartedFormat is Jira's timestamp layout for worklog entries.
	worklogStartedFormat = "2006-01-02T15:04:05.000-0700"
)

// Client talks to one Jira server with basic auth. Construct with NewClient;
// call Connect before issuing operations.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *http.Client
	logger     *slog.Logger

	authenticated bool
}

// NewClient creates a client for the given server. No network I/O happens
// until Connect.
func NewClient(baseURL, username, apiToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// WithHTTPClient returns a copy using the given HTTP client. Useful for
// tests and custom transports.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	clone := *c
	clone.httpClient = httpClient
	return &clone
}

// Connect performs the basic-auth handshake and records the result.
// Subsequent operations short-circuit when the handshake failed.
func (c *Client) Connect(ctx context.Context) bool {
	if c.baseURL == "" || c.username == "" || c.apiToken == "" {
		c.logger.Warn("jira credentials not configured")
		c.authenticated = false
		return false
	}
	var me struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/myself", nil, &me); err != nil {
		c.logger.Error("jira connect failed", "url", c.baseURL, "error", err)
		c.authenticated = false
		return false
	}
	c.authenticated = true
	c.logger.Info("connected to jira", "url", c.baseURL)
	return true
}

// IsConnected reports whether the last Connect succeeded.
func (c *Client) IsConnected() bool {
	return c.authenticated
}

// GetIssue fetches an issue. Returns nil when the issue does not exist or
// the tracker is unreachable.
func (c *Client) GetIssue(ctx context.Context, key string) *Issue {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "get_issue")
		return nil
	}
	var w wireIssue
	query := url.Values{"fields": {"summary,description,status,assignee,project,issuetype,created,updated"}}
	if err := c.get(ctx, "/issue/"+url.PathEscape(key), query, &w); err != nil {
		c.logger.Warn("failed to fetch issue", "issue", key, "error", err)
		return nil
	}
	return w.toIssue()
}

// IssueExists reports whether an issue is visible on the tracker.
func (c *Client) IssueExists(ctx context.Context, key string) bool {
	return c.GetIssue(ctx, key) != nil
}

// AddWorklog posts a time-tracking entry against an issue. timeSpent uses
// the compact duration encoding (FormatDuration). Returns the remote worklog
// id, or "" on failure.
func (c *Client) AddWorklog(ctx context.Context, key, timeSpent, comment string, started time.Time) string {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "add_worklog")
		return ""
	}
	if started.IsZero() {
		started = time.Now()
	}
	payload := map[string]string{
		"timeSpent": timeSpent,
		"comment":   comment,
		"started":   started.Format(worklogStartedFormat),
	}
	var w wireWorklog
	if err := c.post(ctx, "/issue/"+url.PathEscape(key)+"/worklog", payload, &w); err != nil {
		c.logger.Error("failed to add worklog", "issue", key, "error", err)
		return ""
	}
	c.logger.Info("worklog added", "issue", key, "time_spent", timeSpent)
	return w.ID
}

// AddComment posts a comment on an issue.
func (c *Client) AddComment(ctx context.Context, key, body string) bool {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "add_comment")
		return false
	}
	payload := map[string]string{"body": body}
	if err := c.post(ctx, "/issue/"+url.PathEscape(key)+"/comment", payload, nil); err != nil {
		c.logger.Error("failed to add comment", "issue", key, "error", err)
		return false
	}
	c.logger.Info("comment added", "issue", key)
	return true
}

// Search runs a JQL query, returning at most max issues.
func (c *Client) Search(ctx context.Context, jql string, max int) []*Issue {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "search")
		return nil
	}
	if max <= 0 {
		max = 50
	}
	query := url.Values{
		"jql":        {jql},
		"maxResults": {strconv.Itoa(max)},
		"fields":     {"summary,status,assignee,project,issuetype"},
	}
	var w wireSearch
	if err := c.get(ctx, "/search", query, &w); err != nil {
		c.logger.Warn("jql search failed", "jql", jql, "error", err)
		return nil
	}
	issues := make([]*Issue, 0, len(w.Issues))
	for i := range w.Issues {
		issues = append(issues, w.Issues[i].toIssue())
	}
	return issues
}

// MyIssues lists issues assigned to the authenticated user, optionally
// filtered to one status.
func (c *Client) MyIssues(ctx context.Context, status string) []*Issue {
	jql := "assignee = currentUser()"
	if status != "" {
		jql += fmt.Sprintf(" AND status = '%s'", status)
	}
	jql += " ORDER BY updated DESC"
	return c.Search(ctx, jql, 50)
}

// ListTransitions returns the workflow transitions currently available for
// an issue.
func (c *Client) ListTransitions(ctx context.Context, key string) []Transition {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "list_transitions")
		return nil
	}
	var w wireTransitions
	if err := c.get(ctx, "/issue/"+url.PathEscape(key)+"/transitions", nil, &w); err != nil {
		c.logger.Warn("failed to list transitions", "issue", key, "error", err)
		return nil
	}
	transitions := make([]Transition, 0, len(w.Transitions))
	for _, t := range w.Transitions {
		transitions = append(transitions, Transition{ID: t.ID, Name: t.Name, ToStatus: t.To.Name})
	}
	return transitions
}

// TransitionIssue moves an issue to the named status. The transition is
// selected by its destination status name, case-insensitively.
func (c *Client) TransitionIssue(ctx context.Context, key, targetStatus string) bool {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "transition")
		return false
	}
	transitions := c.ListTransitions(ctx, key)
	var target *Transition
	for i := range transitions {
		if strings.EqualFold(transitions[i].ToStatus, targetStatus) {
			target = &transitions[i]
			break
		}
	}
	if target == nil {
		names := make([]string, len(transitions))
		for i, t := range transitions {
			names[i] = t.ToStatus
		}
		c.logger.Warn("transition not available",
			"issue", key, "target", targetStatus, "available", strings.Join(names, ", "))
		return false
	}

	payload := map[string]map[string]string{"transition": {"id": target.ID}}
	if err := c.post(ctx, "/issue/"+url.PathEscape(key)+"/transitions", payload, nil); err != nil {
		c.logger.Error("transition failed", "issue", key, "target", targetStatus, "error", err)
		return false
	}
	c.logger.Info("issue transitioned", "issue", key, "status", targetStatus)
	return true
}

// ListProjects returns all projects visible to the authenticated user.
func (c *Client) ListProjects(ctx context.Context) []Project {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "list_projects")
		return nil
	}
	var ws []wireProject
	query := url.Values{"expand": {"lead"}}
	if err := c.get(ctx, "/project", query, &ws); err != nil {
		c.logger.Warn("failed to list projects", "error", err)
		return nil
	}
	projects := make([]Project, 0, len(ws))
	for _, w := range ws {
		p := Project{Key: w.Key, Name: w.Name}
		if w.Lead != nil {
			p.Lead = w.Lead.DisplayName
		}
		projects = append(projects, p)
	}
	return projects
}

// ProjectStatuses returns the unique status names reachable in a project's
// workflows, sorted.
func (c *Client) ProjectStatuses(ctx context.Context, projectKey string) []string {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "project_statuses")
		return nil
	}
	var ws []wireProjectStatuses
	if err := c.get(ctx, "/project/"+url.PathEscape(projectKey)+"/statuses", nil, &ws); err != nil {
		c.logger.Warn("failed to list project statuses", "project", projectKey, "error", err)
		return nil
	}
	seen := map[string]bool{}
	for _, issueType := range ws {
		for _, s := range issueType.Statuses {
			seen[s.Name] = true
		}
	}
	return sortedKeys(seen)
}

// AllStatuses returns every status name defined on the server, sorted.
func (c *Client) AllStatuses(ctx context.Context) []string {
	if !c.authenticated {
		c.logger.Warn("jira client not connected", "op", "all_statuses")
		return nil
	}
	var ws []wireStatus
	if err := c.get(ctx, "/status", nil, &ws); err != nil {
		c.logger.Warn("failed to list statuses", "error", err)
		return nil
	}
	seen := map[string]bool{}
	for _, s := range ws {
		seen[s.Name] = true
	}
	return sortedKeys(seen)
}

// IssueWorkflow collects the full workflow picture for one issue: current
// status, available transitions, and the union of statuses involved.
func (c *Client) IssueWorkflow(ctx context.Context, key string) *Workflow {
	issue := c.GetIssue(ctx, key)
	if issue == nil {
		return nil
	}
	transitions := c.ListTransitions(ctx, key)

	statuses := make([]string, 0, len(transitions)+1)
	for _, t := range transitions {
		statuses = append(statuses, t.ToStatus)
	}
	statuses = append(statuses, issue.Status)

	return &Workflow{
		IssueKey:             key,
		CurrentStatus:        issue.Status,
		Project:              issue.Project,
		IssueType:            issue.IssueType,
		AvailableTransitions: transitions,
		AllPossibleStatuses:  statuses,
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// do performs one API call, retrying transient failures (network errors,
// 429, 5xx) with exponential backoff. Client errors are permanent.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	operation := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.SetBasicAuth(c.username, c.apiToken)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("server busy: %s (status %d)", strings.TrimSpace(string(respBody)), resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("API error: %s (status %d)", strings.TrimSpace(string(respBody)), resp.StatusCode))
		}

		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
