package database

import (
	"time"

	"gorm.io/datatypes"
)

// Query lifecycle states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Query struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Court      string    `json:"court" gorm:"not null;index"`
	CaseType   string    `json:"case_type" gorm:"not null"`
	CaseNumber string    `json:"case_number" gorm:"not null"`
	Year       int       `json:"year" gorm:"not null"`
	Status     string    `json:"status" gorm:"not null;default:pending"`
	Timestamp  time.Time `json:"timestamp" gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time `json:"updated_at"`

	RawResponse *RawResponse `json:"-" gorm:"foreignKey:QueryID"`
	ParsedData  *ParsedData  `json:"-" gorm:"foreignKey:QueryID"`
	Documents   []Document   `json:"-" gorm:"foreignKey:QueryID"`
}

// RawResponse keeps the unprocessed fetch output for audit and debugging.
type RawResponse struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	QueryID   uint           `json:"query_id" gorm:"not null;uniqueIndex"`
	RawHTML   string         `json:"raw_html" gorm:"type:text"`
	RawJSON   datatypes.JSON `json:"raw_json"`
	Timestamp time.Time      `json:"timestamp" gorm:"autoCreateTime"`
}

type ParsedData struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	QueryID     uint           `json:"query_id" gorm:"not null;uniqueIndex"`
	Petitioner  string         `json:"petitioner"`
	Respondent  string         `json:"respondent"`
	FilingDate  string         `json:"filing_date"`
	NextHearing string         `json:"next_hearing"`
	CaseStatus  string         `json:"case_status"`
	Judge       string         `json:"judge"`
	CourtNumber string         `json:"court_number"`
	CaseHistory datatypes.JSON `json:"case_history"`
	Timestamp   time.Time      `json:"timestamp" gorm:"autoCreateTime"`
}

// Document is a downloadable file attached to a query. FilePath stays nil
// until the first download and then acts as a local cache.
type Document struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	QueryID      uint       `json:"query_id" gorm:"not null;index"`
	DocName      string     `json:"doc_name" gorm:"not null"`
	DocType      string     `json:"doc_type"`
	DocDate      string     `json:"doc_date"`
	FilePath     *string    `json:"file_path"`
	DownloadURL  string     `json:"download_url"`
	DownloadedAt *time.Time `json:"downloaded_at"`
	Timestamp    time.Time  `json:"timestamp" gorm:"autoCreateTime"`
}

func (Query) TableName() string {
	return "queries"
}

func (RawResponse) TableName() string {
	return "raw_responses"
}

func (ParsedData) TableName() string {
	return "parsed_data"
}

func (Document) TableName() string {
	return "documents"
}
