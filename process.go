package main

import (
	"github.com/muhammadolammi/cvanomaly/internal/cv"
)

// ProcessDocument turns one uploaded résumé into a report row. Missing or
// malformed fields show up as anomalies; only a document whose text cannot
// be read returns an error.
func ProcessDocument(doc Document) (cv.DocumentReport, error) {
	mime := doc.Mime
	if mime == "" {
		mime = DetectMime(doc.Filename)
	}
	text, err := ExtractResumeText(mime, doc.Data)
	if err != nil {
		return cv.DocumentReport{}, &ExtractionError{File: doc.Filename, Cause: err}
	}
	return cv.Analyze(doc.Filename, text), nil
}

// ProcessDocuments handles docs in order. A failing document is recorded and
// skipped; the rest of the batch still runs.
func ProcessDocuments(docs []Document) ([]cv.DocumentReport, []FileError) {
	var (
		reports []cv.DocumentReport
		errs    []FileError
	)
	for _, doc := range docs {
		report, err := ProcessDocument(doc)
		if err != nil {
			errs = append(errs, FileError{File: doc.Filename, Error: err.Error()})
			continue
		}
		reports = append(reports, report)
	}
	return reports, errs
}
