package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository/memory"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/validation"
)

var today = time.Date(2024, time.March, 20, 15, 30, 0, 0, time.UTC)

func newService(t *testing.T, maxBuckets int, created ...time.Time) Service {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.CreateUser(ctx, &domain.User{ID: "u1", Email: "r@example.com", Role: domain.RoleRecruiter}))
	require.NoError(t, store.CreateCompany(ctx, &domain.Company{ID: "co", Name: "Acme"}))
	require.NoError(t, store.CreateJob(ctx, &domain.Job{ID: "job", CompanyID: "co", Title: "Engineer", Status: domain.JobStatusOpen}))
	for i, at := range created {
		candidateID := fmt.Sprintf("cand-%d", i)
		require.NoError(t, store.CreateCandidate(ctx, &domain.Candidate{ID: candidateID, FirstName: "C", Email: candidateID + "@example.com"}))
		app := &domain.Application{ID: fmt.Sprintf("app-%d", i), JobID: "job", CandidateID: candidateID, Status: domain.ApplicationApplied, CreatedAt: at}
		event := &domain.ApplicationEvent{ID: fmt.Sprintf("ev-%d", i), ApplicationID: app.ID, ToStatus: domain.ApplicationApplied, CreatedAt: at}
		require.NoError(t, store.CreateApplication(ctx, app, event))
	}
	svc := New(store, store, maxBuckets, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return today }
	return svc
}

func TestSummaryFillsEveryKey(t *testing.T) {
	svc := newService(t, 0, today)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"admin": 0, "recruiter": 1, "candidate": 0}, summary.UsersByRole)
	assert.Equal(t, map[string]int{"draft": 0, "open": 1, "closed": 0}, summary.JobsByStatus)
	assert.Len(t, summary.ApplicationsByStatus, len(domain.ApplicationStatuses))
	assert.Equal(t, 1, summary.ApplicationsByStatus[domain.ApplicationApplied])
	assert.Equal(t, 1, summary.Companies)
	assert.Equal(t, 1, summary.Candidates)
}

func TestApplicationsDefaultsToLastThirtyDays(t *testing.T) {
	svc := newService(t, 0, today, today.AddDate(0, 0, -2), today.AddDate(0, 0, -2), today.AddDate(0, 0, -45))
	series, err := svc.Applications(context.Background(), schema.DashboardRangeQuery{})
	require.NoError(t, err)

	assert.Equal(t, "2024-02-20", series.From)
	assert.Equal(t, "2024-03-20", series.To)
	assert.Equal(t, domain.IntervalDay, series.Interval)
	require.Len(t, series.Buckets, 30)
	assert.Equal(t, 3, series.Total)
	assert.Equal(t, 2, series.Buckets[27].Count)
	assert.Equal(t, 1, series.Buckets[29].Count)
	assert.Zero(t, series.Buckets[0].Count)
}

func TestApplicationsWeeklyBucketsStartOnMonday(t *testing.T) {
	svc := newService(t, 0, time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC))
	series, err := svc.Applications(context.Background(), schema.DashboardRangeQuery{From: "2024-03-01", To: "2024-03-20", Interval: domain.IntervalWeek})
	require.NoError(t, err)

	require.Len(t, series.Buckets, 4)
	assert.Equal(t, time.Date(2024, time.February, 26, 0, 0, 0, 0, time.UTC), series.Buckets[0].BucketStart)
	assert.Equal(t, 1, series.Buckets[1].Count)
	assert.Equal(t, 1, series.Total)
}

func TestApplicationsRejectsBadRanges(t *testing.T) {
	svc := newService(t, 10)
	ctx := context.Background()

	_, err := svc.Applications(ctx, schema.DashboardRangeQuery{From: "2024-03-10", To: "2024-03-01"})
	var verr *validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "from", verr.Fields[0].Field)

	_, err = svc.Applications(ctx, schema.DashboardRangeQuery{From: "2024-01-01", To: "2024-03-01"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "interval", verr.Fields[0].Field)

	_, err = svc.Applications(ctx, schema.DashboardRangeQuery{From: "2024-01-01", To: "2024-03-01", Interval: domain.IntervalMonth})
	require.NoError(t, err)
}

func TestApplicationsCapsUnboundedRanges(t *testing.T) {
	svc := newService(t, 0)
	_, err := svc.Applications(context.Background(), schema.DashboardRangeQuery{From: "0001-01-01", To: "9999-12-31"})
	var verr *validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "interval", verr.Fields[0].Field)
	assert.Contains(t, verr.Fields[0].Message, "more than 5000 buckets")

	series, err := svc.Applications(context.Background(), schema.DashboardRangeQuery{From: "2000-01-01", To: "2024-03-20", Interval: domain.IntervalMonth})
	require.NoError(t, err)
	assert.Len(t, series.Buckets, 291)
}

func TestOverview(t *testing.T) {
	svc := newService(t, 0, today, today.AddDate(0, 0, -1))
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.Applications.Total)
	assert.Equal(t, 2, overview.Summary.ApplicationsByStatus[domain.ApplicationApplied])
	assert.Len(t, overview.RecentEvents, 2)
}
