package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Initialize(Options{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	return NewStore(db)
}

func createTestQuery(t *testing.T, s *Store, caseNumber string) *Query {
	t.Helper()

	q := &Query{Court: "delhi_hc", CaseType: "WP(C)", CaseNumber: caseNumber, Year: 2023}
	require.NoError(t, s.CreateQuery(context.Background(), q))
	return q
}

func TestCreateQueryStartsPending(t *testing.T) {
	s := setupTestStore(t)
	q := createTestQuery(t, s, "123")

	got, err := s.GetQuery(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.False(t, got.Timestamp.IsZero())
}

func TestUpdateStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := createTestQuery(t, s, "123")

	require.NoError(t, s.UpdateStatus(ctx, q.ID, StatusProcessing))
	got, err := s.GetQuery(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)

	err = s.UpdateStatus(ctx, 9999, StatusFailed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveResultCompletesQuery(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := createTestQuery(t, s, "123")

	docs, err := s.SaveResult(ctx, q.ID,
		&RawResponse{RawHTML: "<html></html>", RawJSON: datatypes.JSON(`{"caseNumber":"123"}`)},
		&ParsedData{Petitioner: "ABC Pvt Ltd", Respondent: "XYZ Ltd", CaseStatus: "Pending", CaseHistory: datatypes.JSON(`[]`)},
		[]Document{{DocName: "Order", DocType: "Order", DownloadURL: "https://example.com/order.pdf"}},
	)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotZero(t, docs[0].ID)
	assert.Equal(t, q.ID, docs[0].QueryID)
	assert.Nil(t, docs[0].FilePath)

	got, err := s.GetQuery(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	var rawCount, parsedCount int64
	s.DB().Model(&RawResponse{}).Where("query_id = ?", q.ID).Count(&rawCount)
	s.DB().Model(&ParsedData{}).Where("query_id = ?", q.ID).Count(&parsedCount)
	assert.Equal(t, int64(1), rawCount)
	assert.Equal(t, int64(1), parsedCount)
}

func TestSaveResultRollsBackOnFailure(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := createTestQuery(t, s, "123")

	_, err := s.SaveResult(ctx, q.ID, &RawResponse{RawJSON: datatypes.JSON(`{}`)}, &ParsedData{CaseHistory: datatypes.JSON(`[]`)}, nil)
	require.NoError(t, err)

	// A second result for the same query violates the unique query_id index.
	_, err = s.SaveResult(ctx, q.ID, &RawResponse{RawJSON: datatypes.JSON(`{}`)}, &ParsedData{CaseHistory: datatypes.JSON(`[]`)}, nil)
	require.Error(t, err)

	var rawCount int64
	s.DB().Model(&RawResponse{}).Where("query_id = ?", q.ID).Count(&rawCount)
	assert.Equal(t, int64(1), rawCount)
}

func TestSaveResultRequiresExistingQuery(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.SaveResult(context.Background(), 42, &RawResponse{RawJSON: datatypes.JSON(`{}`)}, &ParsedData{CaseHistory: datatypes.JSON(`[]`)}, nil)
	require.Error(t, err)

	var rawCount int64
	s.DB().Model(&RawResponse{}).Count(&rawCount)
	assert.Zero(t, rawCount)
}

func TestListHistoryMostRecentFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := createTestQuery(t, s, "1")
	second := createTestQuery(t, s, "2")
	_, err := s.SaveResult(ctx, second.ID,
		&RawResponse{RawJSON: datatypes.JSON(`{}`)},
		&ParsedData{Petitioner: "ABC Pvt Ltd", Respondent: "XYZ Ltd", CaseStatus: "Pending", CaseHistory: datatypes.JSON(`[]`)},
		nil,
	)
	require.NoError(t, err)

	rows, err := s.ListHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, "ABC Pvt Ltd", rows[0].Petitioner)
	assert.Equal(t, StatusCompleted, rows[0].Status)
	assert.Equal(t, first.ID, rows[1].ID)
	assert.Empty(t, rows[1].Petitioner)

	rows, err = s.ListHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ID)
}

func TestGetQueryDetail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := createTestQuery(t, s, "123")

	_, err := s.SaveResult(ctx, q.ID,
		&RawResponse{RawJSON: datatypes.JSON(`{}`)},
		&ParsedData{Judge: "Hon. Justice Sharma", CaseHistory: datatypes.JSON(`[{"date":"01-01-2023","description":"Case filed"}]`)},
		[]Document{{DocName: "a"}, {DocName: "b"}},
	)
	require.NoError(t, err)

	got, err := s.GetQueryDetail(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParsedData)
	assert.Equal(t, "Hon. Justice Sharma", got.ParsedData.Judge)
	require.Len(t, got.Documents, 2)
	assert.Equal(t, "a", got.Documents[0].DocName)

	_, err = s.GetQueryDetail(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentFileLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	q := createTestQuery(t, s, "123")

	docs, err := s.SaveResult(ctx, q.ID, &RawResponse{RawJSON: datatypes.JSON(`{}`)}, &ParsedData{CaseHistory: datatypes.JSON(`[]`)}, []Document{{DocName: "Order"}})
	require.NoError(t, err)
	id := docs[0].ID

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.SetDocumentFile(ctx, id, "/tmp/document_1.pdf", old))

	doc, err := s.GetDocument(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, doc.FilePath)
	assert.Equal(t, "/tmp/document_1.pdf", *doc.FilePath)
	require.NotNil(t, doc.DownloadedAt)

	stale, err := s.DownloadedBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, id, stale[0].ID)

	require.NoError(t, s.ClearDocumentFile(ctx, id))
	doc, err = s.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, doc.FilePath)
	assert.Nil(t, doc.DownloadedAt)

	_, err = s.GetDocument(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.SetDocumentFile(ctx, 9999, "x", time.Now()), ErrNotFound)
}

func TestMissingTables(t *testing.T) {
	db, err := Open(Options{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "fresh.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.ElementsMatch(t, []string{"queries", "raw_responses", "parsed_data", "documents"}, MissingTables(db))

	require.NoError(t, Migrate(db))
	assert.Empty(t, MissingTables(db))
}
