package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JustJay7/court-fetcher/internal/fetcher"
)

// Accepted cause list date layouts.
var causeListLayouts = []string{"2006-01-02", "02-01-2006"}

type CauseListRequest struct {
	Court string
	Date  string
}

type CauseListResult struct {
	Date        string `json:"date"`
	Court       string `json:"court"`
	FilePath    string `json:"filePath"`
	DownloadURL string `json:"downloadUrl"`
}

func (r CauseListRequest) Validate() (time.Time, error) {
	if err := requireFields([][2]string{{"court", r.Court}, {"date", r.Date}}); err != nil {
		return time.Time{}, err
	}

	raw := strings.TrimSpace(r.Date)
	for _, layout := range causeListLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, &ValidationError{Message: fmt.Sprintf("Invalid date: %q (use YYYY-MM-DD or DD-MM-YYYY)", r.Date)}
}

// CauseList asks the court's fetcher for the day's cause list.
func (s *Service) CauseList(ctx context.Context, req CauseListRequest) (*CauseListResult, error) {
	ctx, span := tracer.Start(ctx, "service.CauseList")
	defer span.End()

	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	f, err := s.fetchers.Get(req.Court)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	path, err := f.CauseList(fetchCtx, date)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("cause list from %s failed: %w", req.Court, err)
	}

	return &CauseListResult{
		Date:        req.Date,
		Court:       req.Court,
		FilePath:    path,
		DownloadURL: "/api/download-cause-list/" + filepath.Base(path),
	}, nil
}

// CauseListFile resolves a stored cause list by file name.
func (s *Service) CauseListFile(name string) (string, error) {
	path, err := s.files.Path(name)
	if err != nil {
		if errors.Is(err, fetcher.ErrInvalidFileName) {
			return "", fmt.Errorf("file %q: %w", name, ErrNotFound)
		}
		return "", err
	}
	if !s.files.Exists(path) {
		return "", fmt.Errorf("file %q: %w", name, ErrNotFound)
	}
	return path, nil
}
