package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-records-api/internal/models"
)

func TestReportRepositoryCountSessions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_id = $1 AND session_date BETWEEN $2 AND $3")).
		WithArgs("class-1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.CountSessions(context.Background(), "class-1", from, to)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestReportRepositoryAttendanceTallies(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "status", "total"}).
		AddRow("stu-1", "PRESENT", 3).
		AddRow("stu-1", "ABSENT", 1)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY ar.student_id, ar.status")).
		WillReturnRows(rows)

	tallies, err := repo.AttendanceTallies(context.Background(), "class-1", time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, tallies, 2)
	assert.Equal(t, models.AttendancePresent, tallies[0].Status)
	assert.Equal(t, 3, tallies[0].Total)
}

func TestReportRepositoryPeriodSpan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	first := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_id = $1 AND period = $2")).
		WithArgs("class-1", "Morning").
		WillReturnRows(sqlmock.NewRows([]string{"first_date", "last_date"}).AddRow(first, last))

	from, to, err := repo.PeriodSpan(context.Background(), "class-1", "Morning")
	require.NoError(t, err)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.True(t, first.Equal(*from))
	assert.True(t, last.Equal(*to))
}

func TestReportRepositoryPeriodSpanNoSessions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_id = $1 AND period = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"first_date", "last_date"}).AddRow(nil, nil))

	from, to, err := repo.PeriodSpan(context.Background(), "class-1", "Evening")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}
