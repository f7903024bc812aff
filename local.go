package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/muhammadolammi/cvanomaly/internal/cv"
	"github.com/muhammadolammi/cvanomaly/internal/sheet"
)

// runLocal processes files from disk, prints the batch and folds it into
// table. It returns an error only when the table could not be updated; the
// batch is printed either way.
func runLocal(ctx context.Context, paths []string, table ResultTable, out io.Writer) error {
	docs := make([]Document, 0, len(paths))
	var errs []FileError
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			log.Printf("⚠️ Failed to read %s: %v", p, err)
			errs = append(errs, FileError{File: filepath.Base(p), Error: err.Error()})
			continue
		}
		docs = append(docs, Document{Filename: filepath.Base(p), Mime: DetectMime(p), Data: data})
	}

	reports, extractErrs := ProcessDocuments(docs)
	errs = append(errs, extractErrs...)
	for _, e := range extractErrs {
		log.Printf("⚠️ %s", e.Error)
	}

	if err := writeTable(out, reports); err != nil {
		return err
	}
	if len(errs) > 0 {
		fmt.Fprintf(out, "\n%d file(s) could not be processed\n", len(errs))
	}

	merged, err := table.Append(ctx, reports)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d rows in table\n", len(merged))
	return nil
}

func writeTable(out io.Writer, reports []cv.DocumentReport) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(sheet.Columns, "\t"))
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			r.Name,
			r.Email,
			r.Phone,
			r.Education,
			r.Experience,
			r.Skills,
			strings.Join(r.Anomalies, "; "),
			r.Valid,
			r.File,
		)
	}
	return w.Flush()
}
