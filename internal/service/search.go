package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/JustJay7/court-fetcher/internal/cache"
	"github.com/JustJay7/court-fetcher/internal/database"
	"github.com/JustJay7/court-fetcher/internal/fetcher"
)

type SearchRequest struct {
	Court      string
	CaseType   string
	CaseNumber string
	Year       string
}

type DocumentView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	DownloadURL string `json:"downloadUrl"`
}

type SearchResult struct {
	QueryID     uint                   `json:"queryId"`
	CaseDetails fetcher.CaseDetails    `json:"caseDetails"`
	Documents   []DocumentView         `json:"documents"`
	History     []fetcher.HistoryEntry `json:"history"`
}

// Validate checks required fields and the year format.
func (r SearchRequest) Validate() (fetcher.CaseQuery, error) {
	err := requireFields([][2]string{
		{"court", r.Court},
		{"caseType", r.CaseType},
		{"caseNumber", r.CaseNumber},
		{"year", r.Year},
	})
	if err != nil {
		return fetcher.CaseQuery{}, err
	}

	year, err := strconv.Atoi(strings.TrimSpace(r.Year))
	if err != nil || year <= 0 {
		return fetcher.CaseQuery{}, &ValidationError{Message: fmt.Sprintf("Invalid year: %q", r.Year)}
	}

	return fetcher.CaseQuery{
		CaseType:   strings.TrimSpace(r.CaseType),
		CaseNumber: strings.TrimSpace(r.CaseNumber),
		Year:       year,
	}, nil
}

// Search records a query, fetches the case from its court and stores the
// result. Once the query row exists, any failure marks it failed.
func (s *Service) Search(ctx context.Context, req SearchRequest) (result *SearchResult, err error) {
	ctx, span := tracer.Start(ctx, "service.Search", trace.WithAttributes(
		attribute.String("court", req.Court),
		attribute.String("case_type", req.CaseType),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	q, err := req.Validate()
	if err != nil {
		return nil, err
	}

	query := &database.Query{
		Court:      strings.TrimSpace(req.Court),
		CaseType:   q.CaseType,
		CaseNumber: q.CaseNumber,
		Year:       q.Year,
	}
	if err = s.store.CreateQuery(ctx, query); err != nil {
		return nil, err
	}

	log := s.logger.With("queryID", query.ID, "court", query.Court)
	span.SetAttributes(attribute.Int64("query_id", int64(query.ID)))

	defer func() {
		if err == nil {
			return
		}
		// The request may already be cancelled; the status must still land.
		if uerr := s.store.UpdateStatus(context.WithoutCancel(ctx), query.ID, database.StatusFailed); uerr != nil {
			log.Error("Failed to mark query as failed", "error", uerr)
			return
		}
		log.Warn("Search failed", "error", err)
	}()

	if err = s.store.UpdateStatus(ctx, query.ID, database.StatusProcessing); err != nil {
		return nil, err
	}

	res, err := s.fetchCase(ctx, query.Court, q)
	if err != nil {
		return nil, err
	}

	raw, parsed, docs, err := resultRows(res)
	if err != nil {
		return nil, err
	}

	docs, err = s.store.SaveResult(ctx, query.ID, raw, parsed, docs)
	if err != nil {
		return nil, err
	}

	log.Info("Search completed", "documents", len(docs))

	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, DocumentView{
			ID:          d.ID,
			Name:        d.DocName,
			Type:        d.DocType,
			Date:        d.DocDate,
			DownloadURL: d.DownloadURL,
		})
	}

	history := res.History
	if history == nil {
		history = []fetcher.HistoryEntry{}
	}

	return &SearchResult{
		QueryID:     query.ID,
		CaseDetails: res.CaseDetails,
		Documents:   views,
		History:     history,
	}, nil
}

// fetchCase returns a cached result or asks the court's fetcher.
func (s *Service) fetchCase(ctx context.Context, court string, q fetcher.CaseQuery) (*fetcher.CaseResult, error) {
	f, err := s.fetchers.Get(court)
	if err != nil {
		return nil, err
	}

	key := cache.GenerateCacheKey(court, q)
	if res, found := s.cache.Get(key); found {
		s.logger.Debug("Cache hit", "key", key)
		return res, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	res, err := f.SearchCase(fetchCtx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s failed: %w", court, err)
	}

	s.cache.Set(key, res)
	return res, nil
}

func resultRows(res *fetcher.CaseResult) (*database.RawResponse, *database.ParsedData, []database.Document, error) {
	rawData := res.RawData
	if rawData == nil {
		rawData = map[string]interface{}{}
	}
	rawJSON, err := json.Marshal(rawData)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode raw data: %w", err)
	}

	history := res.History
	if history == nil {
		history = []fetcher.HistoryEntry{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode case history: %w", err)
	}

	raw := &database.RawResponse{
		RawHTML: res.RawHTML,
		RawJSON: datatypes.JSON(rawJSON),
	}

	d := res.CaseDetails
	parsed := &database.ParsedData{
		Petitioner:  d.Petitioner,
		Respondent:  d.Respondent,
		FilingDate:  d.FilingDate,
		NextHearing: d.NextHearing,
		CaseStatus:  d.Status,
		Judge:       d.Judge,
		CourtNumber: d.CourtNumber,
		CaseHistory: datatypes.JSON(historyJSON),
	}

	docs := make([]database.Document, 0, len(res.Documents))
	for _, ref := range res.Documents {
		docs = append(docs, database.Document{
			DocName:     ref.Name,
			DocType:     ref.Type,
			DocDate:     ref.Date,
			DownloadURL: ref.DownloadURL,
		})
	}

	return raw, parsed, docs, nil
}
