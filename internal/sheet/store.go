package sheet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/muhammadolammi/cvanomaly/internal/cv"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName        = "CVs"
	ContentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	anomalySeparator = "; "
	defaultTableFile = "all_cvs_dataset.xlsx"
)

// Columns is the header row of the persisted table, in order.
var Columns = []string{"name", "email", "phone", "education", "experience", "skills", "anomalies", "valid", "file"}

// Store is the persistence port for the result table. Load on a table that
// does not exist yet returns no rows and no error; Save replaces the whole
// table; Export returns the persisted table as a downloadable file.
type Store interface {
	Load(ctx context.Context) ([]cv.DocumentReport, error)
	Save(ctx context.Context, reports []cv.DocumentReport) error
	Export(ctx context.Context) ([]byte, error)
}

// PersistenceError reports a failure to read or write the persisted table.
type PersistenceError struct {
	Op    string
	Path  string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s table %s: %v", e.Op, e.Path, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// XLSXStore keeps the table in a single workbook on disk. The whole file is
// rewritten on every save.
type XLSXStore struct {
	path string
}

func NewXLSXStore(path string) *XLSXStore {
	if path == "" {
		path = defaultTableFile
	}
	return &XLSXStore{path: path}
}

// Load reads every row of the table. A missing file yields an empty table.
func (s *XLSXStore) Load(ctx context.Context) ([]cv.DocumentReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "read", Path: s.path, Cause: err}
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: s.path, Cause: err}
	}
	defer f.Close()

	reports, err := readReports(f)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: s.path, Cause: err}
	}
	return reports, nil
}

// Save replaces the table with reports.
func (s *XLSXStore) Save(ctx context.Context, reports []cv.DocumentReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := newWorkbook(reports)
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Cause: err}
	}
	defer f.Close()

	// temp file lives next to the target so the rename stays on one filesystem
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cvtable-*.xlsx")
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Cause: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "write", Path: s.path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Cause: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Cause: err}
	}
	return nil
}

// Export returns the persisted workbook as it is on disk.
func (s *XLSXStore) Export(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: s.path, Cause: err}
	}
	return data, nil
}

func newWorkbook(reports []cv.DocumentReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("header: %w", err)
	}

	for i, r := range reports {
		warnTruncated(r)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			r.Name,
			r.Email,
			r.Phone,
			r.Education,
			r.Experience,
			r.Skills,
			strings.Join(r.Anomalies, anomalySeparator),
			r.Valid,
			r.File,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "C", 24)
	_ = f.SetColWidth(SheetName, "D", "G", 48)
	_ = f.SetColWidth(SheetName, "I", "I", 32)
	return f, nil
}

// excelize cuts string cells at TotalCellChars UTF-16 units without an error.
func warnTruncated(r cv.DocumentReport) {
	cells := map[string]string{
		"name":       r.Name,
		"email":      r.Email,
		"phone":      r.Phone,
		"education":  r.Education,
		"experience": r.Experience,
		"skills":     r.Skills,
		"file":       r.File,
	}
	for _, col := range Columns {
		if n := utf16Len(cells[col]); n > excelize.TotalCellChars {
			log.Printf("⚠️ %s: %s cell has %d characters, truncated to %d", r.File, col, n, excelize.TotalCellChars)
		}
	}
}

func utf16Len(s string) int {
	n := 0
	for _, c := range s {
		n += len(utf16.Encode([]rune{c}))
	}
	return n
}

func readReports(f *excelize.File) ([]cv.DocumentReport, error) {
	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var reports []cv.DocumentReport
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		r := cv.DocumentReport{
			ExtractedRecord: cv.ExtractedRecord{
				Name:       cell(row, "name"),
				Email:      cell(row, "email"),
				Phone:      cell(row, "phone"),
				Education:  cell(row, "education"),
				Experience: cell(row, "experience"),
				Skills:     cell(row, "skills"),
			},
			File: cell(row, "file"),
		}
		if a := cell(row, "anomalies"); a != "" {
			r.Anomalies = strings.Split(a, anomalySeparator)
		}
		if v := cell(row, "valid"); v != "" {
			valid, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: valid %q: %w", n+2, v, err)
			}
			r.Valid = valid
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
