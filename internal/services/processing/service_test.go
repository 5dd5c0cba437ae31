package processing_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fileflow-backend/internal/models"
	"fileflow-backend/internal/services/processing"
	"fileflow-backend/internal/services/validation"
)

type failureCall struct {
	ErrorType string
	Detail    models.FailureDetail
}

type fakeResultStore struct {
	failures   []failureCall
	successes  []map[string]any
	seen       map[string]bool
	failureErr error
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{seen: make(map[string]bool)}
}

func (f *fakeResultStore) InsertFailure(_ context.Context, _ string, errorType string, detail models.FailureDetail) error {
	if f.failureErr != nil {
		return f.failureErr
	}
	f.failures = append(f.failures, failureCall{ErrorType: errorType, Detail: detail})
	return nil
}

func (f *fakeResultStore) InsertSuccess(_ context.Context, _ string, row map[string]any) (bool, error) {
	key := rowKey(row)
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.successes = append(f.successes, row)
	return true, nil
}

func rowKey(row map[string]any) string {
	var b strings.Builder
	for _, col := range validation.ExpectedColumns {
		if v, ok := row[col].(string); ok {
			b.WriteString(v)
		}
		b.WriteByte('|')
	}
	return b.String()
}

type fakeStatusUpdater struct {
	statuses map[string]string
}

func (f *fakeStatusUpdater) UpdateStatus(_ context.Context, fileID, status string) error {
	if f.statuses == nil {
		f.statuses = make(map[string]string)
	}
	f.statuses[fileID] = status
	return nil
}

const header = "sno,name,age,gender,datetime,city,state,email,contact_no,occupation\n"

func newService(t *testing.T) (*processing.Service, *fakeResultStore, *fakeStatusUpdater) {
	t.Helper()
	results := newFakeResultStore()
	files := &fakeStatusUpdater{}
	return processing.NewService(results, files, zap.NewNop()), results, files
}

func TestProcessFile_MissingStateAndEmptyEmail(t *testing.T) {
	svc, results, files := newService(t)
	content := "sno,name,age,gender,datetime,city,email,contact_no,occupation\n" +
		"1,Ann,30,F,01-15-1990,Pune,ann@example.com,1234567890,Engineer\n" +
		"2,Bob,40,M,02-20-1985,Delhi,,9876543210,Doctor\n"

	out, err := svc.ProcessFile(context.Background(), "f1", content)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, out.Status)
	assert.Equal(t, "1 row(s) failed, 1 row(s) passed", out.Message)
	assert.Equal(t, models.StatusFailed, files.statuses["f1"])

	require.Len(t, results.failures, 3)
	assert.Equal(t, models.ErrorTypeTemplate, results.failures[0].ErrorType)
	assert.Equal(t, "missing column: state", results.failures[0].Detail.Message)
	assert.Equal(t, "order mismatch", results.failures[1].Detail.Message)
	assert.Equal(t, models.ErrorTypeNullCheck, results.failures[2].ErrorType)
	assert.Equal(t, 3, results.failures[2].Detail.Row)
	assert.Equal(t, []string{"email"}, results.failures[2].Detail.NullColumns)

	require.Len(t, results.successes, 1)
	assert.Equal(t, "Ann", results.successes[0]["name"])

	summary := out.Summary()
	tmpl, ok := summary[processing.StageTemplate].(validation.TemplateDetail)
	require.True(t, ok)
	assert.Equal(t, []string{"state"}, tmpl.MissingColumns)
	assert.True(t, tmpl.OrderMismatch)
	assert.Equal(t, []processing.NullSummary{{Row: 3, NullColumns: []string{"email"}}}, summary[processing.StageNullCheck])
	assert.NotContains(t, summary, processing.StageDataType)
}

func TestProcessFile_AllValid(t *testing.T) {
	svc, results, files := newService(t)
	content := header +
		"1,Ann,30,F,01-15-1990,Pune,MH,ann@example.com,123-456-7890,Engineer\n" +
		"2,Bob,40,M,02-20-1985,Delhi,DL,bob@example.com,1234567890.0,Doctor\n"

	out, err := svc.ProcessFile(context.Background(), "f2", content)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, out.Status)
	assert.Equal(t, "All validations passed", out.Message)
	assert.Equal(t, 2, out.PassedRows)
	assert.Empty(t, results.failures)
	assert.Len(t, results.successes, 2)
	assert.Equal(t, models.StatusSuccess, files.statuses["f2"])

	msg := out.Classified()
	assert.Equal(t, "f2", msg.FileID)
	assert.Nil(t, msg.Errors)
}

func TestProcessFile_OrderMismatchOnlyFailsFileButNoRows(t *testing.T) {
	svc, results, _ := newService(t)
	content := "name,sno,age,gender,datetime,city,state,email,contact_no,occupation\n" +
		"Ann,1,30,F,01-15-1990,Pune,MH,ann@example.com,1234567890,Engineer\n"

	out, err := svc.ProcessFile(context.Background(), "f3", content)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, out.Status)
	assert.Equal(t, "0 row(s) failed, 1 row(s) passed", out.Message)
	require.Len(t, results.failures, 1)
	assert.Equal(t, "order mismatch", results.failures[0].Detail.Message)
	assert.Len(t, results.successes, 1)
}

func TestProcessFile_RowWithSeveralTypeErrors(t *testing.T) {
	svc, results, _ := newService(t)
	content := header +
		"1,Ann,30,F,13-01-2020,Pune,MH,a@b,12345,Engineer\n"

	out, err := svc.ProcessFile(context.Background(), "f4", content)
	require.NoError(t, err)

	assert.Equal(t, 1, out.FailedRows)
	assert.Equal(t, 0, out.PassedRows)
	require.Len(t, results.failures, 3)
	assert.Equal(t, models.ErrorTypePhone, results.failures[0].ErrorType)
	assert.Equal(t, models.ErrorTypeDOB, results.failures[1].ErrorType)
	assert.Equal(t, models.ErrorTypeEmail, results.failures[2].ErrorType)
	assert.Equal(t, "phone_error at row 2", results.failures[0].Detail.Message)
	assert.Empty(t, results.successes)

	kinds, ok := out.Summary()[processing.StageDataType].(map[string][]processing.TypeSummary)
	require.True(t, ok)
	assert.Equal(t, []processing.TypeSummary{{Row: 2, Column: "contact_no", Value: "12345"}}, kinds[models.ErrorTypePhone])
}

func TestProcessFile_DuplicateRowsStoredOnce(t *testing.T) {
	svc, results, _ := newService(t)
	row := "1,Ann,30,F,01-15-1990,Pune,MH,ann@example.com,1234567890,Engineer\n"

	_, err := svc.ProcessFile(context.Background(), "f5", header+row)
	require.NoError(t, err)
	out, err := svc.ProcessFile(context.Background(), "f5", header+row)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, out.Status)
	assert.Len(t, results.successes, 1)
}

func TestProcessFile_UnparseableInputIsErrorOutcome(t *testing.T) {
	svc, results, files := newService(t)
	content := "a,b\n1,2,3\n"

	out, err := svc.ProcessFile(context.Background(), "f6", content)
	require.NoError(t, err)

	assert.Equal(t, models.StatusError, out.Status)
	assert.Contains(t, out.Message, "expected 2 fields")
	assert.Empty(t, results.failures)
	assert.Empty(t, files.statuses)
}

func TestProcessFile_StoreErrorIsReturned(t *testing.T) {
	svc, results, files := newService(t)
	results.failureErr = errors.New("connection reset")
	content := "sno\n1\n"

	_, err := svc.ProcessFile(context.Background(), "f7", content)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, files.statuses)
}
