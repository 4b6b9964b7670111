/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/Chroma-Case/PLDGenerator/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Tracker interface {
	Issues(ctx context.Context, owner, repo string, milestone int) ([]domain.Issue, error)
	Projects(ctx context.Context, owner, repo string) ([]domain.Board, error)
	Columns(ctx context.Context, projectID int64) ([]domain.Column, error)
	Cards(ctx context.Context, columnID int64) ([]domain.Card, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, stories []*domain.Story, members []*domain.Member) (string, error)
}

type Notifier interface {
	SendMarkdownV2(ctx context.Context, chatID int64, text string) error
}

type Store interface {
	StartRun(ctx context.Context) (int64, error)
	FinishRun(ctx context.Context, run domain.Run) error
	LastRun(ctx context.Context) (*domain.Run, error)
	LastSuccessfulRun(ctx context.Context) (*domain.Run, error)
	TryLock(ctx context.Context, key int64) (bool, error)
	Unlock(ctx context.Context, key int64) error
}

type Service struct {
	cfg     config.Config
	log     zerolog.Logger
	tracker Tracker
	llm     Summarizer
	tg      Notifier
	store   Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// New wires a service. llm, tg, store and m may be nil.
func New(cfg config.Config, log zerolog.Logger, tracker Tracker, llm Summarizer, tg Notifier, store Store, m *metrics.Metrics) *Service {
	return &Service{cfg: cfg, log: log, tracker: tracker, llm: llm, tg: tg, store: store, metrics: m, now: time.Now}
}

// BuildReport fetches the milestone and its boards and builds the report.
// Tracker failures abort the build; malformed issues are only skipped.
func (s *Service) BuildReport(ctx context.Context, st *config.Settings) (*domain.Report, error) {
	start, end, err := st.SprintDates()
	if err != nil {
		return nil, err
	}
	repo := st.Repository

	issues, err := s.tracker.Issues(ctx, repo.Owner, repo.Name, repo.Milestone)
	if err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}
	boards, err := s.fetchBoards(ctx, repo.Owner, repo.Name, repo.Projects)
	if err != nil {
		return nil, fmt.Errorf("fetch boards: %w", err)
	}
	s.log.Info().Int("issues", len(issues)).Int("boards", len(boards)).Int("milestone", repo.Milestone).Msg("tracker data fetched")

	active, ignored := FilterIgnored(issues, repo.IgnoredLabels)
	members := st.NewMembers()
	arena, skipped := BuildStories(s.log, active, DefaultSections, members)

	table := NewNumberingTable()
	projects := []*domain.Project{}
	order := make([]int64, 0, len(boards))
	for _, b := range boards {
		order = append(order, b.ProjectID)
		p := AggregateProject(b, arena, table)
		if p == nil {
			s.log.Debug().Str("project", b.Name).Msg("project has no labelled story, omitted")
			continue
		}
		projects = append(projects, p)
	}
	table.Apply(s.log, arena, order)

	summary := st.ProgressReport.Summary
	if summary == "" && s.llm != nil {
		rs, rm, restore := redactForLLM(arena.Stories(), members)
		drafted, err := s.llm.Summarize(ctx, rs, rm)
		if err != nil {
			s.log.Warn().Err(err).Msg("summary draft failed")
		} else {
			summary = restore(drafted)
		}
	}

	report := AssembleReport(AssembleInput{
		Doc:            st.Doc,
		Summary:        summary,
		BlockingPoints: st.ProgressReport.BlockingPoints,
		Conclusion:     st.ProgressReport.Conclusion,
		Members:        members,
		Arena:          arena,
		Projects:       projects,
		Active:         active,
		Ignored:        ignored,
		Skipped:        skipped,
		Start:          start,
		End:            end,
		Now:            s.now(),
	})
	s.log.Info().Int("stories", len(report.Stories)).Int("projects", len(report.Projects)).
		Int("ignored", len(report.IgnoredIssues)).Int("skipped", len(report.Skipped)).
		Float64("sprint_charge", report.SprintCharge).Msg("report built")
	return report, nil
}

// fetchBoards loads every selected project board concurrently, columns first
// then cards. Boards are returned in declaration order whatever the completion
// order; the first failure cancels the other requests and is returned.
func (s *Service) fetchBoards(ctx context.Context, owner, repo string, only []string) ([]domain.Board, error) {
	projects, err := s.tracker.Projects(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	projects = SelectProjects(projects, only)
	limit := max(1, s.cfg.MaxConcurrency)

	boards := make([]domain.Board, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range projects {
		g.Go(func() error {
			cols, err := s.tracker.Columns(gctx, p.ProjectID)
			if err != nil {
				return fmt.Errorf("project %q: columns: %w", p.Name, err)
			}
			boards[i] = domain.Board{ProjectID: p.ProjectID, Name: p.Name, Columns: cols}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range boards {
		b := &boards[i]
		for j := range b.Columns {
			col := &b.Columns[j]
			g.Go(func() error {
				cards, err := s.tracker.Cards(gctx, col.ID)
				if err != nil {
					return fmt.Errorf("project %q: column %q cards: %w", b.Name, col.Name, err)
				}
				col.Cards = cards
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return boards, nil
}

// SelectProjects keeps the projects named in only, in that order. An empty
// list keeps every project in tracker order.
func SelectProjects(projects []domain.Board, only []string) []domain.Board {
	if len(only) == 0 {
		return projects
	}
	byName := make(map[string]domain.Board, len(projects))
	for _, p := range projects {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p
		}
	}
	out := make([]domain.Board, 0, len(only))
	for _, name := range only {
		if p, ok := byName[name]; ok {
			out = append(out, p)
			delete(byName, name)
		}
	}
	return out
}

// Run builds a report, then records it and notifies the configured chats.
func (s *Service) Run(ctx context.Context, st *config.Settings) (*domain.Report, error) {
	started := s.now()
	report, err := s.BuildReport(ctx, st)
	s.Record(ctx, started, report, err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Record stores the outcome of a build started at started and updates the
// metrics. A successful report is also sent to the configured chats. Store and
// notification failures are logged only.
func (s *Service) Record(ctx context.Context, started time.Time, report *domain.Report, buildErr error) {
	run := domain.Run{StartedAt: started}
	if s.store != nil {
		id, err := s.store.StartRun(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("start run failed")
		}
		run.ID = id
	}

	finished := s.now()
	run.FinishedAt = &finished
	if buildErr != nil || report == nil {
		if buildErr == nil {
			buildErr = errors.New("no report")
		}
		run.Error = buildErr.Error()
	} else {
		run.OK = true
		run.Stories = len(report.Stories)
		run.Skipped = len(report.Skipped)
		run.Report = report
	}
	if s.store != nil && run.ID != 0 {
		if ferr := s.store.FinishRun(ctx, run); ferr != nil {
			s.log.Error().Err(ferr).Int64("run", run.ID).Msg("finish run failed")
		}
	}
	if !run.OK {
		s.metrics.ObserveRun(false, 0, 0, 0)
		return
	}
	s.metrics.ObserveRun(true, run.Stories, run.Skipped, report.SprintCharge)
	s.notify(ctx, report)
}

// RunScheduled reloads the settings file and runs a generation. It is the
// entry point of the cron job and the admin endpoint.
func (s *Service) RunScheduled(ctx context.Context) error {
	st, err := config.LoadSettings(s.cfg.SettingsFile)
	if err != nil {
		return err
	}
	_, err = s.Run(ctx, st)
	return err
}

func (s *Service) notify(ctx context.Context, r *domain.Report) {
	if s.tg == nil || len(s.cfg.TelegramChatIDs) == 0 {
		return
	}
	text := RenderDigest(r)
	for _, chat := range s.cfg.TelegramChatIDs {
		if err := s.tg.SendMarkdownV2(ctx, chat, text); err != nil {
			s.log.Error().Err(err).Int64("chat", chat).Msg("telegram send failed")
		}
	}
}

// GetLastRun returns the last stored run, or nil when nothing is stored.
func (s *Service) GetLastRun(ctx context.Context) (*domain.Run, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.LastRun(ctx)
}

// LatestReport returns the report of the last successful run, or nil.
func (s *Service) LatestReport(ctx context.Context) (*domain.Report, error) {
	if s.store == nil {
		return nil, nil
	}
	run, err := s.store.LastSuccessfulRun(ctx)
	if err != nil || run == nil {
		return nil, err
	}
	return run.Report, nil
}
