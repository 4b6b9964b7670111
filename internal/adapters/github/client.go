/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/rs/zerolog"
)

const maxAttempts = 3

// StatusError is a non-retried or exhausted API failure.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api status=%d body=%s", e.Status, e.Body)
}

type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
	log      zerolog.Logger
	backoff  time.Duration
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	size := cfg.GitHubPageSize
	if size <= 0 || size > 100 {
		size = 100
	}
	return &Client{
		baseURL:  cfg.GitHubAPIURL,
		token:    cfg.GitHubToken,
		pageSize: size,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
		log:      log,
		backoff:  300 * time.Millisecond,
	}
}

func (c *Client) apiURL(path string, q url.Values) string {
	base := strings.TrimRight(c.baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := base + path
	if len(q) > 0 {
		u = u + "?" + q.Encode()
	}
	return u
}

// getJSON decodes a GET response into out, retrying on 429 and 5xx.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	if c.baseURL == "" {
		return errors.New("github: empty baseURL")
	}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(c.backoff * time.Duration(1<<(attempt-1)))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		retry, err := c.do(ctx, u, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
		c.log.Warn().Err(err).Str("url", u).Int("attempt", attempt+1).Msg("github request failed, retrying")
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, u string, out any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serr := &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, serr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("github: decode %s: %w", u, err)
	}
	return false, nil
}

// pages fetches path page by page until a short page is returned.
func pages[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("per_page", strconv.Itoa(c.pageSize))
	var out []T
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		var batch []T
		if err := c.getJSON(ctx, c.apiURL(path, q), &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < c.pageSize {
			return out, nil
		}
	}
}

type ghLabel struct {
	Name string `json:"name"`
}

type ghUser struct {
	Login string `json:"login"`
}

type ghMilestone struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

type ghIssue struct {
	Number      int          `json:"number"`
	Title       string       `json:"title"`
	Body        *string      `json:"body"`
	State       string       `json:"state"`
	Labels      []ghLabel    `json:"labels"`
	Assignees   []ghUser     `json:"assignees"`
	Milestone   *ghMilestone `json:"milestone"`
	PullRequest *struct{}    `json:"pull_request"`
}

func (i ghIssue) toDomain() domain.Issue {
	out := domain.Issue{
		Number:      i.Number,
		Title:       i.Title,
		State:       i.State,
		Labels:      make([]string, 0, len(i.Labels)),
		Assignees:   make([]string, 0, len(i.Assignees)),
		PullRequest: i.PullRequest != nil,
	}
	if i.Body != nil {
		out.Body = *i.Body
	}
	for _, l := range i.Labels {
		out.Labels = append(out.Labels, l.Name)
	}
	for _, a := range i.Assignees {
		out.Assignees = append(out.Assignees, a.Login)
	}
	if i.Milestone != nil {
		out.Milestone = &domain.Milestone{Number: i.Milestone.Number, Title: i.Milestone.Title}
	}
	return out
}

// Issues lists the open and closed issues of a milestone. Pull requests, which
// the issues endpoint also returns, are left out.
func (c *Client) Issues(ctx context.Context, owner, repo string, milestone int) ([]domain.Issue, error) {
	if owner == "" || repo == "" {
		return nil, errors.New("github: empty repository")
	}
	q := url.Values{}
	q.Set("milestone", strconv.Itoa(milestone))
	q.Set("state", "all")
	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/issues"
	raw, err := pages[ghIssue](ctx, c, path, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Issue, 0, len(raw))
	for _, r := range raw {
		i := r.toDomain()
		if i.PullRequest {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

type ghProject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Projects lists the repository's project boards, without columns.
func (c *Client) Projects(ctx context.Context, owner, repo string) ([]domain.Board, error) {
	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/projects"
	raw, err := pages[ghProject](ctx, c, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Board, 0, len(raw))
	for _, p := range raw {
		out = append(out, domain.Board{ProjectID: p.ID, Name: p.Name})
	}
	return out, nil
}

// Columns lists the columns of a project board, without cards.
func (c *Client) Columns(ctx context.Context, projectID int64) ([]domain.Column, error) {
	if projectID <= 0 {
		return nil, errors.New("github: invalid project id")
	}
	path := "/projects/" + strconv.FormatInt(projectID, 10) + "/columns"
	return pages[domain.Column](ctx, c, path, nil)
}

// Cards lists the cards of a column. Note cards have an empty content URL.
func (c *Client) Cards(ctx context.Context, columnID int64) ([]domain.Card, error) {
	if columnID <= 0 {
		return nil, errors.New("github: invalid column id")
	}
	q := url.Values{}
	q.Set("archived_state", "not_archived")
	path := "/projects/columns/" + strconv.FormatInt(columnID, 10) + "/cards"
	return pages[domain.Card](ctx, c, path, q)
}
