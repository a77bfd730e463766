package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/court-fetcher/internal/cache"
	"github.com/JustJay7/court-fetcher/internal/database"
	"github.com/JustJay7/court-fetcher/internal/fetcher"
	"github.com/JustJay7/court-fetcher/pkg/logger"
)

// fakeFetcher wraps the Delhi HC mock and counts calls.
type fakeFetcher struct {
	*fetcher.DelhiHC
	court         string
	searchCalls   int
	downloadCalls int
	searchErr     error
	onSearch      func()
}

func (f *fakeFetcher) Court() string {
	return f.court
}

func (f *fakeFetcher) SearchCase(ctx context.Context, q fetcher.CaseQuery) (*fetcher.CaseResult, error) {
	f.searchCalls++
	if f.onSearch != nil {
		f.onSearch()
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.DelhiHC.SearchCase(ctx, q)
}

func (f *fakeFetcher) DownloadDocument(ctx context.Context, url string, id uint) (string, error) {
	f.downloadCalls++
	return f.DelhiHC.DownloadDocument(ctx, url, id)
}

type testEnv struct {
	svc     *Service
	store   *database.Store
	fetcher *fakeFetcher
	files   *fetcher.FileStore
}

func setupTestService(t *testing.T, opts Options) *testEnv {
	t.Helper()

	db, err := database.Initialize(database.Options{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	log := logger.NewNop()
	files, err := fetcher.NewFileStore(filepath.Join(t.TempDir(), "uploads"), log)
	require.NoError(t, err)

	ff := &fakeFetcher{DelhiHC: fetcher.NewDelhiHC(files, log), court: fetcher.DelhiHighCourt}
	store := database.NewStore(db)
	svc := New(store, fetcher.NewRegistry(ff), cache.NewCache(100, time.Minute), files, log, opts)

	return &testEnv{svc: svc, store: store, fetcher: ff, files: files}
}

func validRequest() SearchRequest {
	return SearchRequest{Court: "delhi_hc", CaseType: "WP(C)", CaseNumber: "123", Year: "2023"}
}

func countRows(t *testing.T, s *database.Store, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(model).Count(&n).Error)
	return n
}

func TestSearchCompletesQuery(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	var statusDuringFetch string
	env.fetcher.onSearch = func() {
		q, err := env.store.GetQuery(ctx, 1)
		require.NoError(t, err)
		statusDuringFetch = q.Status
	}

	res, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, database.StatusProcessing, statusDuringFetch)
	assert.Equal(t, "ABC Pvt Ltd", res.CaseDetails.Petitioner)
	require.Len(t, res.Documents, 1)
	assert.NotZero(t, res.Documents[0].ID)
	assert.Len(t, res.History, 2)

	q, err := env.store.GetQuery(ctx, res.QueryID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusCompleted, q.Status)
	assert.Equal(t, 2023, q.Year)

	assert.Equal(t, int64(1), countRows(t, env.store, &database.RawResponse{}))
	assert.Equal(t, int64(1), countRows(t, env.store, &database.ParsedData{}))
	assert.Equal(t, int64(1), countRows(t, env.store, &database.Document{}))
}

func TestSearchValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *SearchRequest)
		missing []string
	}{
		{name: "missing court", mutate: func(r *SearchRequest) { r.Court = "" }, missing: []string{"court"}},
		{name: "missing case type", mutate: func(r *SearchRequest) { r.CaseType = "" }, missing: []string{"caseType"}},
		{name: "blank case number", mutate: func(r *SearchRequest) { r.CaseNumber = "  " }, missing: []string{"caseNumber"}},
		{name: "missing year", mutate: func(r *SearchRequest) { r.Year = "" }, missing: []string{"year"}},
		{name: "non numeric year", mutate: func(r *SearchRequest) { r.Year = "twenty" }},
		{name: "everything missing", mutate: func(r *SearchRequest) { *r = SearchRequest{} }, missing: []string{"court", "caseType", "caseNumber", "year"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestService(t, Options{})
			req := validRequest()
			tt.mutate(&req)

			_, err := env.svc.Search(context.Background(), req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.missing, vErr.Missing)
			assert.Zero(t, countRows(t, env.store, &database.Query{}))
			assert.Zero(t, env.fetcher.searchCalls)
		})
	}
}

func TestSearchUnsupportedCourtMarksFailed(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	req := validRequest()
	req.Court = "bombay_hc"

	_, err := env.svc.Search(ctx, req)
	require.ErrorIs(t, err, fetcher.ErrUnsupportedCourt)

	q, err := env.store.GetQuery(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, database.StatusFailed, q.Status)

	assert.Zero(t, countRows(t, env.store, &database.RawResponse{}))
	assert.Zero(t, countRows(t, env.store, &database.ParsedData{}))
}

func TestSearchFetchErrorMarksFailed(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()
	env.fetcher.searchErr = errors.New("portal unavailable")

	_, err := env.svc.Search(ctx, validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portal unavailable")

	q, err := env.store.GetQuery(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, database.StatusFailed, q.Status)
}

func TestSearchCancelledContextStillMarksFailed(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	env.fetcher.onSearch = cancel

	_, err := env.svc.Search(ctx, validRequest())
	require.ErrorIs(t, err, context.Canceled)

	q, err := env.store.GetQuery(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, database.StatusFailed, q.Status)
}

func TestRepeatedSearchesAreIndependent(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	first, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)
	second, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.QueryID, second.QueryID)
	assert.Equal(t, int64(2), countRows(t, env.store, &database.Query{}))
	assert.Equal(t, int64(2), countRows(t, env.store, &database.ParsedData{}))

	// The second fetch is served from the result cache.
	assert.Equal(t, 1, env.fetcher.searchCalls)
	assert.Equal(t, int64(1), env.svc.CacheStats().Hits)
}

func TestDownloadDocumentReusesCachedFile(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	res, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)
	docID := res.Documents[0].ID

	first, err := env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)
	assert.FileExists(t, first)

	second, err := env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, env.fetcher.downloadCalls)

	doc, err := env.store.GetDocument(ctx, docID)
	require.NoError(t, err)
	require.NotNil(t, doc.FilePath)
	assert.Equal(t, first, *doc.FilePath)
}

func TestDownloadDocumentRefetchesMissingFile(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	res, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)
	docID := res.Documents[0].ID

	path, err := env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 2, env.fetcher.downloadCalls)
}

func TestDownloadDocumentRefetchesStaleFile(t *testing.T) {
	env := setupTestService(t, Options{DocumentMaxAge: time.Hour})
	ctx := context.Background()

	res, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)
	docID := res.Documents[0].ID

	_, err = env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)

	_, err = env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.fetcher.downloadCalls)

	now := time.Now()
	env.svc.now = func() time.Time { return now.Add(2 * time.Hour) }

	_, err = env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 2, env.fetcher.downloadCalls)
}

func TestDownloadDocumentNotFound(t *testing.T) {
	env := setupTestService(t, Options{})

	_, err := env.svc.DownloadDocument(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPruneDocuments(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	res, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)
	docID := res.Documents[0].ID

	path, err := env.svc.DownloadDocument(ctx, docID)
	require.NoError(t, err)

	n, err := env.svc.PruneDocuments(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	now := time.Now()
	env.svc.now = func() time.Time { return now.Add(2 * time.Hour) }

	n, err = env.svc.PruneDocuments(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, path)

	doc, err := env.store.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Nil(t, doc.FilePath)
}

func TestCauseList(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	res, err := env.svc.CauseList(ctx, CauseListRequest{Court: "delhi_hc", Date: "2024-03-15"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", res.Date)
	assert.Equal(t, "/api/download-cause-list/cause_list_2024-03-15.pdf", res.DownloadURL)

	path, err := env.svc.CauseListFile("cause_list_2024-03-15.pdf")
	require.NoError(t, err)
	assert.Equal(t, res.FilePath, path)

	res, err = env.svc.CauseList(ctx, CauseListRequest{Court: "delhi_hc", Date: "15-03-2024"})
	require.NoError(t, err)
	assert.Equal(t, "/api/download-cause-list/cause_list_2024-03-15.pdf", res.DownloadURL)
}

func TestCauseListErrors(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	var vErr *ValidationError
	_, err := env.svc.CauseList(ctx, CauseListRequest{Court: "delhi_hc"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"date"}, vErr.Missing)

	_, err = env.svc.CauseList(ctx, CauseListRequest{Court: "delhi_hc", Date: "../../etc"})
	require.ErrorAs(t, err, &vErr)

	_, err = env.svc.CauseList(ctx, CauseListRequest{Court: "supreme_court", Date: "2024-03-15"})
	assert.ErrorIs(t, err, fetcher.ErrUnsupportedCourt)

	_, err = env.svc.CauseListFile("missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.CauseListFile("../test.db")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryLimits(t *testing.T) {
	env := setupTestService(t, Options{HistoryDefaultLimit: 2, HistoryMaxLimit: 3})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := env.svc.Search(ctx, validRequest())
		require.NoError(t, err)
	}

	tests := []struct {
		limit int
		want  int
	}{
		{limit: 1, want: 1},
		{limit: 0, want: 2},
		{limit: -5, want: 2},
		{limit: 100, want: 3},
	}
	for _, tt := range tests {
		rows, err := env.svc.History(ctx, tt.limit)
		require.NoError(t, err)
		assert.Len(t, rows, tt.want, "limit %d", tt.limit)
	}

	rows, err := env.svc.History(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(4), rows[0].ID)
	assert.Equal(t, "ABC Pvt Ltd", rows[0].Petitioner)
	assert.Equal(t, "XYZ Ltd", rows[0].Respondent)
	assert.Equal(t, "Pending", rows[0].CaseStatus)
}

func TestQueryDetail(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	res, err := env.svc.Search(ctx, validRequest())
	require.NoError(t, err)

	detail, err := env.svc.QueryDetail(ctx, res.QueryID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusCompleted, detail.Status)
	assert.Equal(t, "Hon. Justice Sharma", detail.Judge)
	require.Len(t, detail.CaseHistory, 2)
	assert.Equal(t, "Case filed", detail.CaseHistory[0].Description)
	require.Len(t, detail.Documents, 1)
	assert.Equal(t, "Order dated 01-01-2023", detail.Documents[0].Name)

	_, err = env.svc.QueryDetail(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryDetailOfFailedQuery(t *testing.T) {
	env := setupTestService(t, Options{})
	ctx := context.Background()

	req := validRequest()
	req.Court = "bombay_hc"
	_, err := env.svc.Search(ctx, req)
	require.Error(t, err)

	detail, err := env.svc.QueryDetail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, database.StatusFailed, detail.Status)
	assert.Empty(t, detail.Petitioner)
	assert.Empty(t, detail.CaseHistory)
	assert.Empty(t, detail.Documents)
}
