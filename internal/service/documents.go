package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustJay7/court-fetcher/internal/database"
)

// DownloadDocument returns a local path for the document, downloading it
// through the owning court's fetcher unless a fresh copy is already on disk.
func (s *Service) DownloadDocument(ctx context.Context, documentID uint) (path string, err error) {
	ctx, span := tracer.Start(ctx, "service.DownloadDocument", trace.WithAttributes(
		attribute.Int64("document_id", int64(documentID)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	if s.cachedFileFresh(doc) {
		span.SetAttributes(attribute.Bool("cached", true))
		return *doc.FilePath, nil
	}

	query, err := s.store.GetQuery(ctx, doc.QueryID)
	if err != nil {
		return "", err
	}

	f, err := s.fetchers.Get(query.Court)
	if err != nil {
		return "", err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	path, err = f.DownloadDocument(fetchCtx, doc.DownloadURL, doc.ID)
	if err != nil {
		return "", fmt.Errorf("download from %s failed: %w", query.Court, err)
	}

	if err := s.store.SetDocumentFile(ctx, doc.ID, path, s.now()); err != nil {
		return "", err
	}

	s.logger.Info("Document downloaded", "documentID", doc.ID, "path", path)
	return path, nil
}

// cachedFileFresh applies the staleness rule for downloaded documents: the
// file must still exist and, when a max age is configured, be younger than it.
func (s *Service) cachedFileFresh(doc *database.Document) bool {
	if doc.FilePath == nil || *doc.FilePath == "" {
		return false
	}
	if !s.files.Exists(*doc.FilePath) {
		return false
	}
	if s.opts.DocumentMaxAge == 0 {
		return true
	}
	if doc.DownloadedAt == nil {
		return false
	}
	return s.now().Sub(*doc.DownloadedAt) < s.opts.DocumentMaxAge
}

// PruneDocuments deletes document files downloaded more than olderThan ago
// and clears their cached path. It returns how many documents were pruned.
func (s *Service) PruneDocuments(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	docs, err := s.store.DownloadedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, doc := range docs {
		if doc.FilePath != nil {
			if err := s.files.Remove(*doc.FilePath); err != nil {
				s.logger.Warn("Failed to remove document file", "documentID", doc.ID, "path", *doc.FilePath, "error", err)
				continue
			}
		}

		if err := s.store.ClearDocumentFile(ctx, doc.ID); err != nil {
			return pruned, err
		}
		pruned++

		s.logger.Info("Removed old document", "documentID", doc.ID)
	}

	return pruned, nil
}
