// Package dashboard assembles what the dashboard shows: the profile, the
// top matches, the skills they highlight, and courses for those skills.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/careermatch/internal/presentation"
	"github.com/jonathan/careermatch/internal/skills"
	"github.com/jonathan/careermatch/internal/types"
)

// Default list sizes.
const (
	DefaultMatchLimit  = 20
	DefaultCourseLimit = 5
)

// Backend is the subset of the API client the dashboard needs.
type Backend interface {
	Profile(ctx context.Context) (*types.UserProfile, error)
	Matching(ctx context.Context) (*types.MatchingResponse, error)
	Explain(ctx context.Context, jobID string) (*types.MatchingExplain, error)
	CoursesBySkills(ctx context.Context, skills []string) ([]types.RecommendedCourse, error)
}

// Options configures a Service.
type Options struct {
	MatchLimit  int
	CourseLimit int
	Table       skills.Table
	Normalizer  presentation.Normalizer
	Logger      *slog.Logger
}

// Service builds dashboard views from a Backend.
type Service struct {
	backend Backend
	opts    Options
	log     *slog.Logger
}

// New creates a Service. Zero option fields take defaults.
func New(backend Backend, opts Options) *Service {
	if opts.MatchLimit <= 0 {
		opts.MatchLimit = DefaultMatchLimit
	}
	if opts.CourseLimit <= 0 {
		opts.CourseLimit = DefaultCourseLimit
	}
	if opts.Table == nil {
		opts.Table = skills.DefaultTable()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{backend: backend, opts: opts, log: logger}
}

// Dashboard is the assembled dashboard view.
type Dashboard struct {
	Profile *types.UserProfile        `json:"profile"`
	Status  string                    `json:"status"`
	Matches []types.MatchingCard      `json:"matches"`
	Skills  []string                  `json:"skills"`
	Courses []types.RecommendedCourse `json:"courses"`
}

// Load fetches the profile and matches concurrently. A failed profile fetch
// leaves Profile nil; a failed matching fetch fails the load.
func (s *Service) Load(ctx context.Context) (*Dashboard, error) {
	var (
		profile  *types.UserProfile
		matching *types.MatchingResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.backend.Profile(gctx)
		if err != nil {
			s.log.Warn("profile unavailable", "error", err)
			return nil
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		m, err := s.backend.Matching(gctx)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		matching = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		Profile: profile,
		Status:  matching.Status,
		Matches: []types.MatchingCard{},
		Skills:  []string{},
		Courses: []types.RecommendedCourse{},
	}
	if !matching.Ready() {
		return d, nil
	}

	d.Matches = truncate(matching.Data, s.opts.MatchLimit)
	d.Skills = skills.Aggregate(d.Matches, s.opts.Table, profile.MajorOrEmpty())
	if len(d.Skills) == 0 {
		return d, nil
	}

	courses, err := s.backend.CoursesBySkills(ctx, d.Skills)
	if err != nil {
		s.log.Warn("course recommendations unavailable", "error", err)
		return d, nil
	}
	d.Courses = truncate(courses, s.opts.CourseLimit)
	return d, nil
}

// ExplainView is the detailed analysis of one match, with presentable scores.
type ExplainView struct {
	JobID            string             `json:"jobId"`
	Title            string             `json:"title"`
	Company          string             `json:"company,omitempty"`
	CompanyAddress   string             `json:"companyAddress,omitempty"`
	Scores           presentation.Score `json:"scores"`
	MissingSkills    []string           `json:"missingSkills"`
	ImpossibleReason string             `json:"impossibleReason,omitempty"`
	SourceURL        string             `json:"sourceUrl,omitempty"`
}

// Explain fetches the analysis for card and normalizes its breakdown. The
// scores are seeded by the job title the backend reports.
func (s *Service) Explain(ctx context.Context, card types.MatchingCard) (*ExplainView, error) {
	e, err := s.backend.Explain(ctx, card.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to explain job %s: %w", card.JobID, err)
	}

	title := e.JobTitle
	if title == "" {
		title = card.Title
	}
	company := e.Company
	if company == "" {
		company = card.Company
	}
	missing := e.MissingSkills
	if missing == nil {
		missing = []string{}
	}

	return &ExplainView{
		JobID:            card.JobID,
		Title:            title,
		Company:          company,
		CompanyAddress:   e.CompanyAddress,
		Scores:           s.opts.Normalizer.Normalize(title, toBreakdown(e.Breakdown)),
		MissingSkills:    missing,
		ImpossibleReason: e.ImpossibleReason,
		SourceURL:        card.SourceURL,
	}, nil
}

// ExplainJob explains a job known only by ID.
func (s *Service) ExplainJob(ctx context.Context, jobID string) (*ExplainView, error) {
	return s.Explain(ctx, types.MatchingCard{JobID: jobID})
}

func toBreakdown(b types.Breakdown) presentation.Breakdown {
	return presentation.Breakdown{
		Skill:         b.Skill,
		Accessibility: b.Accessibility,
		WorkType:      b.WorkType,
	}
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
