// Package reconcile picks one value per structured legal field out of several
// unreliable candidates (curator input, header extraction, AI analysis).
package reconcile

import "fmt"

type FieldType int

const (
	CaseNumber FieldType = iota
	ReportingJudge
	Chamber
	DocketNumber
)

func (f FieldType) String() string {
	switch f {
	case CaseNumber:
		return "case_number"
	case ReportingJudge:
		return "reporting_judge"
	case Chamber:
		return "chamber"
	case DocketNumber:
		return "docket_number"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Fields holds the four reconciled values. Empty means unknown.
type Fields struct {
	CaseNumber     string `json:"case_number,omitempty"`
	ReportingJudge string `json:"reporting_judge,omitempty"`
	Chamber        string `json:"chamber,omitempty"`
	DocketNumber   string `json:"docket_number,omitempty"`
}

func (f Fields) Get(t FieldType) string {
	switch t {
	case CaseNumber:
		return f.CaseNumber
	case ReportingJudge:
		return f.ReportingJudge
	case Chamber:
		return f.Chamber
	case DocketNumber:
		return f.DocketNumber
	}
	return ""
}

func (f *Fields) Set(t FieldType, v string) {
	switch t {
	case CaseNumber:
		f.CaseNumber = v
	case ReportingJudge:
		f.ReportingJudge = v
	case Chamber:
		f.Chamber = v
	case DocketNumber:
		f.DocketNumber = v
	}
}

// AllFields lists every FieldType in a stable order.
var AllFields = []FieldType{CaseNumber, ReportingJudge, Chamber, DocketNumber}

// Missing reports whether any field is empty or a placeholder.
func (f Fields) Missing() bool {
	for _, t := range AllFields {
		if IsPlaceholder(f.Get(t)) {
			return true
		}
	}
	return false
}
