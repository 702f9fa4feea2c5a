// Package dashboard computes the admin dashboard figures.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/validation"
)

const (
	defaultRangeDays = 30
	recentEvents     = 10
	dateLayout       = "2006-01-02"
)

// EventLister returns the newest pipeline events.
type EventLister interface {
	ListRecentApplicationEvents(ctx context.Context, limit int) ([]domain.ApplicationEvent, error)
}

// Series is the applications-over-time chart.
type Series struct {
	From     string               `json:"from"`
	To       string               `json:"to"`
	Interval string               `json:"interval"`
	Total    int                  `json:"total"`
	Buckets  []domain.BucketCount `json:"buckets"`
}

// Overview bundles everything the dashboard landing page shows.
type Overview struct {
	Summary      domain.DashboardSummary   `json:"summary"`
	Applications Series                    `json:"applications"`
	RecentEvents []domain.ApplicationEvent `json:"recent_events"`
}

// Service answers dashboard queries.
type Service struct {
	stats      repository.DashboardRepository
	events     EventLister
	maxBuckets int
	logger     *slog.Logger
	now        func() time.Time
}

// hardMaxBuckets caps a series when maxBuckets is unset or larger.
const hardMaxBuckets = 5000

// New returns a dashboard service. maxBuckets <= 0 falls back to hardMaxBuckets.
func New(stats repository.DashboardRepository, events EventLister, maxBuckets int, logger *slog.Logger) Service {
	return Service{stats: stats, events: events, maxBuckets: maxBuckets, logger: logger, now: time.Now}
}

// Summary returns headline counts. Every known role and status is present,
// zero when nothing matches.
func (s Service) Summary(ctx context.Context) (domain.DashboardSummary, error) {
	summary, err := s.stats.DashboardSummary(ctx)
	if err != nil {
		return domain.DashboardSummary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	summary.UsersByRole = withKeys(summary.UsersByRole, domain.RoleAdmin, domain.RoleRecruiter, domain.RoleCandidate)
	summary.JobsByStatus = withKeys(summary.JobsByStatus, domain.JobStatusDraft, domain.JobStatusOpen, domain.JobStatusClosed)
	summary.ApplicationsByStatus = withKeys(summary.ApplicationsByStatus, domain.ApplicationStatuses...)
	return summary, nil
}

// Applications counts applications per bucket between two dates (inclusive).
// Empty buckets are reported as zero so the chart has no gaps.
func (s Service) Applications(ctx context.Context, q schema.DashboardRangeQuery) (Series, error) {
	from, to, interval, err := s.resolveRange(q)
	if err != nil {
		return Series{}, err
	}
	first := domain.BucketStart(from, interval)
	last := domain.BucketStart(to, interval)
	limit := s.maxBuckets
	if limit <= 0 || limit > hardMaxBuckets {
		limit = hardMaxBuckets
	}
	n := 0
	for b := first; !b.After(last); b = domain.NextBucket(b, interval) {
		if n++; n > limit {
			return Series{}, validation.Field("interval", "max_buckets",
				fmt.Sprintf("range produces more than %d buckets; use a wider interval or a shorter range", limit))
		}
	}

	counts, err := s.stats.CountApplicationsByBucket(ctx, from, to.AddDate(0, 0, 1), interval)
	if err != nil {
		return Series{}, fmt.Errorf("dashboard series: %w", err)
	}
	byStart := make(map[time.Time]int, len(counts))
	for _, c := range counts {
		byStart[c.BucketStart.UTC()] += c.Count
	}

	series := Series{
		From:     from.Format(dateLayout),
		To:       to.Format(dateLayout),
		Interval: interval,
		Buckets:  make([]domain.BucketCount, 0, n),
	}
	for b := first; !b.After(last); b = domain.NextBucket(b, interval) {
		count := byStart[b]
		series.Buckets = append(series.Buckets, domain.BucketCount{BucketStart: b, Count: count})
		series.Total += count
	}
	return series, nil
}

// Overview loads summary, the default series and recent activity concurrently.
func (s Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.Summary(gctx)
		out.Summary = summary
		return err
	})
	g.Go(func() error {
		series, err := s.Applications(gctx, schema.DashboardRangeQuery{})
		out.Applications = series
		return err
	})
	g.Go(func() error {
		events, err := s.events.ListRecentApplicationEvents(gctx, recentEvents)
		if err != nil {
			return fmt.Errorf("recent events: %w", err)
		}
		out.RecentEvents = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (s Service) resolveRange(q schema.DashboardRangeQuery) (time.Time, time.Time, string, error) {
	interval := q.Interval
	if interval == "" {
		interval = domain.IntervalDay
	}
	errs := &validation.Errors{}
	to := domain.BucketStart(s.now(), domain.IntervalDay)
	if q.To != "" {
		parsed, err := time.Parse(dateLayout, q.To)
		if err != nil {
			errs.Add("to", "datetime", "must be a date formatted as YYYY-MM-DD")
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -(defaultRangeDays - 1))
	if q.From != "" {
		parsed, err := time.Parse(dateLayout, q.From)
		if err != nil {
			errs.Add("from", "datetime", "must be a date formatted as YYYY-MM-DD")
		}
		from = parsed
	}
	if err := errs.OrNil(); err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, "", validation.Field("from", "range", "must not be after to")
	}
	return from, to, interval, nil
}

func withKeys(m map[string]int, keys ...string) map[string]int {
	out := make(map[string]int, len(keys)+len(m))
	for _, k := range keys {
		out[k] = 0
	}
	for k, v := range m {
		out[k] = v
	}
	return out
}
