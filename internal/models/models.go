package models

import (
	"strings"
	"time"
)

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
	DocumentReady    DocumentStatus = "READY"
	DocumentArchived DocumentStatus = "ARCHIVED"
)

// AnalysisStatus tracks the AI analysis sub-state. The empty value means the
// document was never queued.
type AnalysisStatus string

const (
	AnalysisNone       AnalysisStatus = ""
	AnalysisPending    AnalysisStatus = "PENDING"
	AnalysisProcessing AnalysisStatus = "PROCESSING"
	AnalysisCompleted  AnalysisStatus = "COMPLETED"
	AnalysisFailed     AnalysisStatus = "FAILED"
	AnalysisError      AnalysisStatus = "ERROR"
)

type IntegrityStatus string

const (
	IntegrityUnverified IntegrityStatus = "UNVERIFIED"
	IntegrityVerified   IntegrityStatus = "VERIFIED"
	IntegrityCorrupted  IntegrityStatus = "CORRUPTED"
)

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "DRAFT"
	ArticleInReview  ArticleStatus = "IN_REVIEW"
	ArticleReady     ArticleStatus = "READY_TO_PUBLISH"
	ArticleScheduled ArticleStatus = "SCHEDULED"
	ArticlePublished ArticleStatus = "PUBLISHED"
	ArticleArchived  ArticleStatus = "ARCHIVED"
)

// MaxContentRunes bounds Document.Content; longer values are truncated on write.
const MaxContentRunes = 10000

// GeneralSlots is the number of positions in the portal's general section.
const GeneralSlots = 6

type Document struct {
	ID           string     `json:"id"`
	ExternalID   string     `json:"external_id"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Court        string     `json:"court,omitempty"`
	SentenceType string     `json:"sentence_type,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`

	Content         string `json:"content,omitempty"`
	FullTextContent string `json:"full_text_content,omitempty"`
	DocumentPath    string `json:"document_path,omitempty"`

	CaseNumber     string `json:"case_number,omitempty"`
	ReportingJudge string `json:"reporting_judge,omitempty"`
	Chamber        string `json:"chamber,omitempty"`
	DocketNumber   string `json:"docket_number,omitempty"`
	PrimaryTopic   string `json:"primary_topic,omitempty"`
	AISummary      string `json:"ai_summary,omitempty"`
	Decision       string `json:"decision,omitempty"`
	AIModel        string `json:"ai_model,omitempty"`

	Status         DocumentStatus `json:"status"`
	AnalysisStatus AnalysisStatus `json:"analysis_status,omitempty"`
	AnalysisError  string         `json:"analysis_error,omitempty"`
	AnalyzedAt     *time.Time     `json:"analyzed_at,omitempty"`

	FileChecksum        string          `json:"file_checksum,omitempty"`
	ContentChecksum     string          `json:"content_checksum,omitempty"`
	FullTextChecksum    string          `json:"full_text_checksum,omitempty"`
	IntegrityStatus     IntegrityStatus `json:"integrity_status"`
	IntegrityVerifiedAt *time.Time      `json:"integrity_verified_at,omitempty"`

	CuratedBy string     `json:"curated_by,omitempty"`
	CuratedAt *time.Time `json:"curated_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Article struct {
	ID                string        `json:"id"`
	SourceDocumentID  string        `json:"source_document_id,omitempty"`
	Title             string        `json:"title"`
	Slug              string        `json:"slug"`
	Content           string        `json:"content"`
	Summary           string        `json:"summary,omitempty"`
	Status            ArticleStatus `json:"status"`
	IsGeneral         bool          `json:"is_general"`
	IsLatestNews      bool          `json:"is_latest_news"`
	IsWeeklyHighlight bool          `json:"is_weekly_highlight"`
	SelectedEntity    string        `json:"selected_entity,omitempty"`
	GeneralPosition   *int          `json:"general_position,omitempty"`
	PublishedAt       *time.Time    `json:"published_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type AuditLog struct {
	ID          string    `json:"id"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type GeneratedImage struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ArticleID  string    `json:"article_id,omitempty"`
	URL        string    `json:"url"`
	Prompt     string    `json:"prompt,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SentenceTypeFromID derives the ruling type from its external id prefix
// ("T-123/23" is a tutela, "SU-..." a unification ruling).
func SentenceTypeFromID(externalID string) string {
	id := strings.ToUpper(strings.TrimSpace(externalID))
	switch {
	case strings.HasPrefix(id, "SU"):
		return "SU"
	case strings.HasPrefix(id, "T"):
		return "T"
	case strings.HasPrefix(id, "C"):
		return "C"
	case strings.HasPrefix(id, "A"):
		return "A"
	default:
		return "UNKNOWN"
	}
}

// Curatable reports whether a curator may still approve or reject the document.
func (s DocumentStatus) Curatable() bool {
	return s == DocumentPending || s == DocumentApproved
}

func IntPtr(v int) *int { return &v }
