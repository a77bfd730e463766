package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// HistoryRow is a query joined with the headline fields of its parsed data.
type HistoryRow struct {
	ID         uint      `json:"id"`
	Court      string    `json:"court"`
	CaseType   string    `json:"case_type"`
	CaseNumber string    `json:"case_number"`
	Year       int       `json:"year"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
	Petitioner string    `json:"petitioner"`
	Respondent string    `json:"respondent"`
	CaseStatus string    `json:"case_status"`
}

// Store is the persistence layer for queries and their results.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Ping() error {
	return Ping(s.db)
}

// CreateQuery inserts a new query in the pending state.
func (s *Store) CreateQuery(ctx context.Context, q *Query) error {
	q.Status = StatusPending
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("failed to create query: %w", err)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, queryID uint, status string) error {
	res := s.db.WithContext(ctx).Model(&Query{}).Where("id = ?", queryID).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update query %d status: %w", queryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("query %d: %w", queryID, ErrNotFound)
	}
	return nil
}

func (s *Store) GetQuery(ctx context.Context, queryID uint) (*Query, error) {
	var q Query
	if err := s.db.WithContext(ctx).First(&q, queryID).Error; err != nil {
		return nil, wrapNotFound(err, "query", queryID)
	}
	return &q, nil
}

// SaveResult writes the raw response, parsed data and documents of a query
// and marks it completed, all in one transaction. The returned documents
// carry their assigned ids.
func (s *Store) SaveResult(ctx context.Context, queryID uint, raw *RawResponse, parsed *ParsedData, docs []Document) ([]Document, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		raw.QueryID = queryID
		if err := tx.Create(raw).Error; err != nil {
			return fmt.Errorf("failed to store raw response: %w", err)
		}

		parsed.QueryID = queryID
		if err := tx.Create(parsed).Error; err != nil {
			return fmt.Errorf("failed to store parsed data: %w", err)
		}

		for i := range docs {
			docs[i].QueryID = queryID
		}
		if len(docs) > 0 {
			if err := tx.Create(&docs).Error; err != nil {
				return fmt.Errorf("failed to store documents: %w", err)
			}
		}

		res := tx.Model(&Query{}).Where("id = ?", queryID).Update("status", StatusCompleted)
		if res.Error != nil {
			return fmt.Errorf("failed to complete query: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("query %d: %w", queryID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) GetDocument(ctx context.Context, documentID uint) (*Document, error) {
	var doc Document
	if err := s.db.WithContext(ctx).First(&doc, documentID).Error; err != nil {
		return nil, wrapNotFound(err, "document", documentID)
	}
	return &doc, nil
}

// SetDocumentFile records where a document was downloaded to.
func (s *Store) SetDocumentFile(ctx context.Context, documentID uint, path string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&Document{}).Where("id = ?", documentID).
		Updates(map[string]interface{}{"file_path": path, "downloaded_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to update document %d: %w", documentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("document %d: %w", documentID, ErrNotFound)
	}
	return nil
}

// ClearDocumentFile forgets the cached file of a document.
func (s *Store) ClearDocumentFile(ctx context.Context, documentID uint) error {
	err := s.db.WithContext(ctx).Model(&Document{}).Where("id = ?", documentID).
		Updates(map[string]interface{}{"file_path": nil, "downloaded_at": nil}).Error
	if err != nil {
		return fmt.Errorf("failed to clear document %d: %w", documentID, err)
	}
	return nil
}

// DownloadedBefore lists documents whose cached file is older than cutoff.
func (s *Store) DownloadedBefore(ctx context.Context, cutoff time.Time) ([]Document, error) {
	var docs []Document
	err := s.db.WithContext(ctx).
		Where("file_path IS NOT NULL AND downloaded_at < ?", cutoff).
		Order("id").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list downloaded documents: %w", err)
	}
	return docs, nil
}

// ListHistory returns the most recent queries first.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := s.db.WithContext(ctx).
		Table("queries AS q").
		Select(`q.id, q.court, q.case_type, q.case_number, q.year, q.timestamp, q.status,
			COALESCE(p.petitioner, '') AS petitioner,
			COALESCE(p.respondent, '') AS respondent,
			COALESCE(p.case_status, '') AS case_status`).
		Joins("LEFT JOIN parsed_data p ON q.id = p.query_id").
		Order("q.timestamp DESC, q.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return rows, nil
}

// GetQueryDetail loads a query together with its parsed data and documents.
func (s *Store) GetQueryDetail(ctx context.Context, queryID uint) (*Query, error) {
	var q Query
	err := s.db.WithContext(ctx).
		Preload("ParsedData").
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("documents.id")
		}).
		First(&q, queryID).Error
	if err != nil {
		return nil, wrapNotFound(err, "query", queryID)
	}
	return &q, nil
}

func wrapNotFound(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %d: %w", kind, id, err)
}
