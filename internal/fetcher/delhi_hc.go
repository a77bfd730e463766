package fetcher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/JustJay7/court-fetcher/pkg/logger"
)

const DelhiHighCourt = "delhi_hc"

// DelhiHC serves static sample data for the Delhi High Court until the
// portal integration exists.
type DelhiHC struct {
	files  *FileStore
	logger *logger.Logger
}

func NewDelhiHC(files *FileStore, logger *logger.Logger) *DelhiHC {
	return &DelhiHC{
		files:  files,
		logger: logger.With("court", DelhiHighCourt),
	}
}

func (d *DelhiHC) Court() string {
	return DelhiHighCourt
}

func (d *DelhiHC) Name() string {
	return "Delhi High Court"
}

func (d *DelhiHC) CaseTypes() []string {
	return []string{
		"WP(C)", "WP(CRL)", "CRL.A", "CRL.M.C", "FAO", "MAC.APP",
		"CS(COMM)", "CS(OS)", "ARB.A", "ARB.P", "CO.PET", "CONT.CAS(C)",
	}
}

// SearchCase searches for a case and returns its details
func (d *DelhiHC) SearchCase(ctx context.Context, q CaseQuery) (*CaseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.logger.Info("Searching case", "type", q.CaseType, "number", q.CaseNumber, "year", q.Year)

	return &CaseResult{
		RawHTML: "<html>Mock Delhi HC HTML</html>",
		RawData: map[string]interface{}{
			"caseType":   q.CaseType,
			"caseNumber": q.CaseNumber,
			"year":       strconv.Itoa(q.Year),
		},
		CaseDetails: CaseDetails{
			Petitioner:  "ABC Pvt Ltd",
			Respondent:  "XYZ Ltd",
			FilingDate:  "01-01-2023",
			NextHearing: "15-10-2025",
			Status:      "Pending",
			Judge:       "Hon. Justice Sharma",
			CourtNumber: "Court No. 5",
		},
		Documents: []DocumentRef{
			{
				Name:        "Order dated 01-01-2023",
				Type:        "Order",
				Date:        "01-01-2023",
				DownloadURL: "https://example.com/order.pdf",
			},
		},
		History: []HistoryEntry{
			{Date: "01-01-2023", Description: "Case filed"},
			{Date: "15-03-2024", Description: "Hearing conducted"},
		},
	}, nil
}

func (d *DelhiHC) DownloadDocument(ctx context.Context, downloadURL string, documentID uint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("document_%d.pdf", documentID)
	path, err := d.files.Write(name, placeholderPDF(
		d.Name(),
		fmt.Sprintf("Document %d", documentID),
		"Source: "+downloadURL,
	))
	if err != nil {
		return "", fmt.Errorf("failed to store document %d: %w", documentID, err)
	}

	d.logger.Info("Document downloaded", "documentID", documentID, "path", path)
	return path, nil
}

func (d *DelhiHC) CauseList(ctx context.Context, date time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	day := date.Format("2006-01-02")
	path, err := d.files.Write("cause_list_"+day+".pdf", placeholderPDF(
		d.Name()+" cause list",
		"Date: "+day,
	))
	if err != nil {
		return "", fmt.Errorf("failed to store cause list for %s: %w", day, err)
	}

	d.logger.Info("Cause list stored", "date", day, "path", path)
	return path, nil
}
