package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fileflow-backend/internal/models"
	"fileflow-backend/internal/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

var fileColumns = []string{"file_id", "filename", "userid", "username", "role", "processed", "processed_at", "created_at"}

func TestFileRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewFileRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "files"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.FileRecord{
		FileID:   "f1",
		Filename: "people.csv",
		UserID:   "u1",
		Username: "ann",
		Role:     models.RoleUser,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_GetByID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewFileRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows(fileColumns).
		AddRow("f1", "people.csv", "u1", "ann", "user", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "files" WHERE file_id = $1`)).
		WillReturnRows(rows)

	file, err := repo.GetByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "people.csv", file.Filename)
	assert.Equal(t, models.StatusSuccess, file.Status())
}

func TestFileRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewFileRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "files" WHERE file_id = $1`)).
		WillReturnRows(sqlmock.NewRows(fileColumns))

	file, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, file)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFileRepository_ListNewestFirst(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewFileRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows(fileColumns).
		AddRow("f2", "b.csv", "u1", "ann", "user", nil, nil, now).
		AddRow("f1", "a.csv", "u1", "ann", "user", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "files" ORDER BY file_id DESC`)).
		WillReturnRows(rows)

	files, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, models.StatusPending, files[0].Status())
	assert.Equal(t, models.StatusFailed, files[1].Status())
}

func TestFileRepository_UpdateStatus(t *testing.T) {
	tests := []struct {
		status    string
		processed bool
	}{
		{models.StatusSuccess, true},
		{models.StatusFailed, false},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			gormDB, mock := setupMockDB(t)
			repo := repository.NewFileRepository(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "files" SET "processed"=$1,"processed_at"=$2 WHERE file_id = $3`)).
				WithArgs(tc.processed, sqlmock.AnyArg(), "f1").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			require.NoError(t, repo.UpdateStatus(context.Background(), "f1", tc.status))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFileRepository_CountByProcessed(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewFileRepository(gormDB)

	rows := sqlmock.NewRows([]string{"processed", "count"}).
		AddRow(true, 7).
		AddRow(false, 3).
		AddRow(nil, 2)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT processed, COUNT(*) as count FROM "files"`)).
		WillReturnRows(rows)

	counts, err := repo.CountByProcessed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.ProcessedCounts{Total: 12, Passed: 7, Failed: 3}, counts)
}

func TestFileRepository_IDsByFilename_WithDay(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewFileRepository(gormDB)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "files" WHERE filename = $1 AND (processed_at >= $2 AND processed_at < $3)`)).
		WithArgs("people.csv", day, day.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"file_id"}).AddRow("f1").AddRow("f2"))

	ids, err := repo.IDsByFilename(context.Background(), "people.csv", &day)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, ids)
}

func TestFileRepository_DailyCounts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewFileRepository(gormDB)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	rows := sqlmock.NewRows([]string{"day", "success_count", "failure_count"}).
		AddRow("2024-05-01", 4, 1).
		AddRow("2024-05-03", 0, 2)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT TO_CHAR(processed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day`)).
		WithArgs(from, to).
		WillReturnRows(rows)

	counts, err := repo.DailyCounts(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []repository.DailyCount{
		{Date: "2024-05-01", SuccessCount: 4, FailureCount: 1},
		{Date: "2024-05-03", SuccessCount: 0, FailureCount: 2},
	}, counts)
}
