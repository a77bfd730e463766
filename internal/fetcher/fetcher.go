package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnsupportedCourt is returned for court identifiers with no registered fetcher.
var ErrUnsupportedCourt = errors.New("court not supported yet")

// Fetcher retrieves case data from a single court portal.
type Fetcher interface {
	// Court is the identifier requests use to select this fetcher.
	Court() string
	Name() string
	CaseTypes() []string

	SearchCase(ctx context.Context, q CaseQuery) (*CaseResult, error)
	// DownloadDocument stores the document behind downloadURL locally and
	// returns the file path.
	DownloadDocument(ctx context.Context, downloadURL string, documentID uint) (string, error)
	// CauseList stores the cause list for the given day and returns the file path.
	CauseList(ctx context.Context, date time.Time) (string, error)
}

// CaseQuery represents a case search query
type CaseQuery struct {
	CaseType   string `json:"caseType"`
	CaseNumber string `json:"caseNumber"`
	Year       int    `json:"year"`
}

type CaseDetails struct {
	Petitioner  string `json:"petitioner"`
	Respondent  string `json:"respondent"`
	FilingDate  string `json:"filingDate"`
	NextHearing string `json:"nextHearing"`
	Status      string `json:"status"`
	Judge       string `json:"judge"`
	CourtNumber string `json:"courtNumber"`
}

type DocumentRef struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	DownloadURL string `json:"downloadUrl"`
}

type HistoryEntry struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// CaseResult is everything a court returns for one case search.
type CaseResult struct {
	RawHTML     string                 `json:"rawHtml"`
	RawData     map[string]interface{} `json:"rawData"`
	CaseDetails CaseDetails            `json:"caseDetails"`
	Documents   []DocumentRef          `json:"documents"`
	History     []HistoryEntry         `json:"history"`
}

// CourtInfo describes a registered court.
type CourtInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CaseTypes []string `json:"caseTypes"`
}

// Registry maps court identifiers to fetchers.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

func NewRegistry(fetchers ...Fetcher) *Registry {
	r := &Registry{fetchers: make(map[string]Fetcher)}
	for _, f := range fetchers {
		r.Register(f)
	}
	return r
}

// Register adds f, replacing any fetcher already registered for its court.
func (r *Registry) Register(f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fetchers[f.Court()] = f
}

func (r *Registry) Get(court string) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fetchers[court]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCourt, court)
	}
	return f, nil
}

// Courts lists registered courts sorted by id.
func (r *Registry) Courts() []CourtInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	courts := make([]CourtInfo, 0, len(r.fetchers))
	for _, f := range r.fetchers {
		courts = append(courts, CourtInfo{
			ID:        f.Court(),
			Name:      f.Name(),
			CaseTypes: f.CaseTypes(),
		})
	}
	sort.Slice(courts, func(i, j int) bool { return courts[i].ID < courts[j].ID })
	return courts
}
