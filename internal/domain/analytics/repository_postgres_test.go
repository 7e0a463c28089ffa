package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresRepoWithMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewPostgresRepository(&connection.Database{DB: gdb}), mock
}

func TestPostgresRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT INTO "analytics_sessions"`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &Session{ResumeID: uuid.New(), SessionID: "abc123"})
	assert.ErrorIs(t, err, ErrSessionExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindBySessionIDMissing(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT \* FROM "analytics_sessions" WHERE session_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindBySessionID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DailyStats(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)
	a, b := uuid.New(), uuid.New()
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	q := `(?s)^SELECT to_char\(created_at, 'YYYY-MM-DD'\) AS date, COUNT\(\*\) AS sessions, COUNT\(DISTINCT session_id\) AS unique_visitors ` +
		`FROM "analytics_sessions" WHERE resume_id IN \(\$1,\$2\) AND created_at >= \$3 GROUP BY "?date"? ORDER BY date ASC$`
	mock.ExpectQuery(q).
		WithArgs(a.String(), b.String(), since).
		WillReturnRows(sqlmock.NewRows([]string{"date", "sessions", "unique_visitors"}).
			AddRow("2024-05-01", 5, 3).
			AddRow("2024-05-02", 2, 2))

	stats, err := repo.DailyStats(context.Background(), []uuid.UUID{a, b}, since)
	require.NoError(t, err)
	assert.Equal(t, []DailyStat{
		{Date: "2024-05-01", Sessions: 5, UniqueVisitors: 3},
		{Date: "2024-05-02", Sessions: 2, UniqueVisitors: 2},
	}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_NoResumesSkipsQuery(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)
	ctx := context.Background()

	stats, err := repo.DailyStats(ctx, nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, stats)
	n, err := repo.CountByResumes(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, repo.DeleteByResumes(ctx, nil))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GeoStats(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)
	id := uuid.New()

	q := `(?s)^SELECT location_country AS country, location_city AS city, COUNT\(\*\) AS count, AVG\(time_spent\) AS avg_time_spent ` +
		`FROM "analytics_sessions" WHERE resume_id = \$1 GROUP BY location_country, location_city ORDER BY count DESC LIMIT (\$2|10)$`
	mock.ExpectQuery(q).
		WillReturnRows(sqlmock.NewRows([]string{"country", "city", "count", "avg_time_spent"}).
			AddRow("India", "Bengaluru", 7, 42.5).
			AddRow("Germany", "Berlin", 2, 10.0))

	stats, err := repo.GeoStats(context.Background(), id, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, GeoStat{Country: "India", City: "Bengaluru", Count: 7, AvgTimeSpent: 42.5}, stats[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Breakdowns(t *testing.T) {
	id := uuid.New()

	t.Run("devices", func(t *testing.T) {
		repo, mock := newPostgresRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT device_type AS type, COUNT\(\*\) AS count, AVG\(time_spent\) AS avg_time_spent FROM "analytics_sessions" WHERE resume_id = \$1 GROUP BY "?device_type"? ORDER BY count DESC$`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows([]string{"type", "count", "avg_time_spent"}).
				AddRow("desktop", 4, 30.0).
				AddRow("mobile", 1, 5.0))

		stats, err := repo.DeviceStats(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []DeviceStat{
			{Type: DeviceDesktop, Count: 4, AvgTimeSpent: 30},
			{Type: DeviceMobile, Count: 1, AvgTimeSpent: 5},
		}, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("referrers", func(t *testing.T) {
		repo, mock := newPostgresRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT referrer_source AS source, referrer_campaign AS campaign, .* GROUP BY referrer_source, referrer_campaign ORDER BY count DESC$`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows([]string{"source", "campaign", "count", "avg_time_spent"}).
				AddRow("linkedin", "spring", 3, 12.0))

		stats, err := repo.ReferrerStats(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []ReferrerStat{{Source: "linkedin", Campaign: "spring", Count: 3, AvgTimeSpent: 12}}, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hours", func(t *testing.T) {
		repo, mock := newPostgresRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT CAST\(EXTRACT\(HOUR FROM created_at\) AS INTEGER\) AS hour, COUNT\(\*\) AS count .* GROUP BY "?hour"? ORDER BY hour ASC$`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows([]string{"hour", "count"}).
				AddRow(9, 2).
				AddRow(18, 5))

		stats, err := repo.HourlyStats(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []HourStat{{Hour: 9, Count: 2}, {Hour: 18, Count: 5}}, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("time spent", func(t *testing.T) {
		repo, mock := newPostgresRepoWithMock(t)
		mock.ExpectQuery(`(?s)^SELECT COALESCE\(AVG\(time_spent\), 0\) AS avg, COUNT\(\*\) AS count FROM "analytics_sessions" WHERE resume_id = \$1`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(21.5, 4))

		avg, count, err := repo.TimeSpentStats(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 21.5, avg)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_DeleteByResumes(t *testing.T) {
	repo, mock := newPostgresRepoWithMock(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectExec(`(?s)^DELETE FROM "analytics_sessions" WHERE resume_id IN \(\$1,\$2\)$`).
		WithArgs(a.String(), b.String()).
		WillReturnResult(sqlmock.NewResult(0, 6))

	require.NoError(t, repo.DeleteByResumes(context.Background(), []uuid.UUID{a, b}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
