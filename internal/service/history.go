package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JustJay7/court-fetcher/internal/database"
	"github.com/JustJay7/court-fetcher/internal/fetcher"
)

type DocumentSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Date string `json:"date"`
}

// QueryDetail is a query with its parsed data and document metadata.
type QueryDetail struct {
	ID          uint                   `json:"id"`
	Court       string                 `json:"court"`
	CaseType    string                 `json:"case_type"`
	CaseNumber  string                 `json:"case_number"`
	Year        int                    `json:"year"`
	Timestamp   time.Time              `json:"timestamp"`
	Status      string                 `json:"status"`
	Petitioner  string                 `json:"petitioner"`
	Respondent  string                 `json:"respondent"`
	FilingDate  string                 `json:"filing_date"`
	NextHearing string                 `json:"next_hearing"`
	CaseStatus  string                 `json:"case_status"`
	Judge       string                 `json:"judge"`
	CourtNumber string                 `json:"court_number"`
	CaseHistory []fetcher.HistoryEntry `json:"case_history"`
	Documents   []DocumentSummary      `json:"documents"`
}

// History lists recent queries. Non-positive limits fall back to the
// default; larger ones are capped.
func (s *Service) History(ctx context.Context, limit int) ([]database.HistoryRow, error) {
	if limit <= 0 {
		limit = s.opts.HistoryDefaultLimit
	}
	if limit > s.opts.HistoryMaxLimit {
		limit = s.opts.HistoryMaxLimit
	}

	rows, err := s.store.ListHistory(ctx, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []database.HistoryRow{}
	}
	return rows, nil
}

func (s *Service) QueryDetail(ctx context.Context, queryID uint) (*QueryDetail, error) {
	q, err := s.store.GetQueryDetail(ctx, queryID)
	if err != nil {
		return nil, err
	}

	detail := &QueryDetail{
		ID:          q.ID,
		Court:       q.Court,
		CaseType:    q.CaseType,
		CaseNumber:  q.CaseNumber,
		Year:        q.Year,
		Timestamp:   q.Timestamp,
		Status:      q.Status,
		CaseHistory: []fetcher.HistoryEntry{},
		Documents:   make([]DocumentSummary, 0, len(q.Documents)),
	}

	if p := q.ParsedData; p != nil {
		detail.Petitioner = p.Petitioner
		detail.Respondent = p.Respondent
		detail.FilingDate = p.FilingDate
		detail.NextHearing = p.NextHearing
		detail.CaseStatus = p.CaseStatus
		detail.Judge = p.Judge
		detail.CourtNumber = p.CourtNumber
		if len(p.CaseHistory) > 0 {
			if err := json.Unmarshal(p.CaseHistory, &detail.CaseHistory); err != nil {
				return nil, fmt.Errorf("failed to decode case history of query %d: %w", q.ID, err)
			}
		}
	}

	for _, d := range q.Documents {
		detail.Documents = append(detail.Documents, DocumentSummary{
			ID:   d.ID,
			Name: d.DocName,
			Type: d.DocType,
			Date: d.DocDate,
		})
	}

	return detail, nil
}
