package cv

// ExtractedRecord holds the fields pulled out of one résumé's text.
// An empty string means the field was not found.
type ExtractedRecord struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
	Skills     string `json:"skills"`
}

type AnomalyReport struct {
	Anomalies []string `json:"anomalies"`
	Valid     bool     `json:"valid"`
}

// DocumentReport is one row of the result table.
type DocumentReport struct {
	ExtractedRecord
	AnomalyReport
	File string `json:"file"`
}

func NewDocumentReport(file string, record ExtractedRecord, report AnomalyReport) DocumentReport {
	return DocumentReport{
		ExtractedRecord: record,
		AnomalyReport:   report,
		File:            file,
	}
}

// Analyze runs the extractor and the checker over text and tags the result with file.
func Analyze(file, text string) DocumentReport {
	record := Extract(text)
	return NewDocumentReport(file, record, Check(record))
}

// Aggregate returns prior followed by reports. Neither input is modified.
func Aggregate(reports, prior []DocumentReport) []DocumentReport {
	if len(reports) == 0 {
		return prior
	}
	if prior == nil {
		return reports
	}
	merged := make([]DocumentReport, 0, len(prior)+len(reports))
	merged = append(merged, prior...)
	return append(merged, reports...)
}
