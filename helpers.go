package main

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/streadway/amqp"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no extractable text")
)

// ExtractionError means a document's text could not be obtained.
type ExtractionError struct {
	File  string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.File, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// DetectMime guesses the document type from the file extension.
func DetectMime(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	case ".txt", ".text":
		return mimeText
	default:
		return ""
	}
}

// --- File Download ---

func DownloadFromR2(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

func UploadToR2(ctx context.Context, client *s3.Client, bucket, key, contentType string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func newR2Client(cfg aws.Config, accountID string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
	})
}

// ExtractResumeText returns the document's text. PDF pages without text are
// skipped; a PDF where no page yields text is an error.
func ExtractResumeText(mime string, data []byte) (string, error) {
	switch mime {
	case mimeText:
		return string(data), nil

	case mimePDF:
		return extractPDFText(bytes.NewReader(data))

	case mimeDocx:
		return extractDocxText(bytes.NewReader(data))

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mime)
	}
}

func extractPDFText(reader io.ReaderAt) (text string, err error) {
	// the pdf package panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(reader, lenReader(reader))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var pages []string
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := pdfPageText(page)
		if err != nil {
			log.Printf("⚠️ skipping pdf page %d: %v", i, err)
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pages = append(pages, pageText)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("%w in %d pages", ErrNoText, numPages)
	}
	return strings.Join(pages, "\n"), nil
}

// pdfPageText rebuilds the page's lines from glyph positions, top to bottom.
// Glyphs on one line keep content-stream order.
func pdfPageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%v", r)
		}
	}()

	var rows []*textRow
	for _, glyph := range page.Content().Text {
		if glyph.S == "\n" {
			continue
		}
		row := findRow(rows, glyph)
		if row == nil {
			row = &textRow{y: glyph.Y}
			rows = append(rows, row)
		}
		row.add(glyph)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].y > rows[j].y
	})

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.text.String()
	}
	return strings.Join(lines, "\n"), nil
}

// gap between glyphs, relative to font size, that counts as a word break
const pdfWordGap = 0.2

type textRow struct {
	y    float64
	end  float64
	text strings.Builder
}

func findRow(rows []*textRow, glyph pdf.Text) *textRow {
	tolerance := math.Max(glyph.FontSize/2, 1)
	for _, row := range rows {
		if math.Abs(row.y-glyph.Y) <= tolerance {
			return row
		}
	}
	return nil
}

func (r *textRow) add(glyph pdf.Text) {
	if r.text.Len() > 0 && glyph.S != " " && glyph.X-r.end > glyph.FontSize*pdfWordGap {
		if !strings.HasSuffix(r.text.String(), " ") {
			r.text.WriteByte(' ')
		}
	}
	r.text.WriteString(glyph.S)
	r.end = glyph.X + glyph.W
}

func extractDocxText(reader io.Reader) (string, error) {
	buf := new(bytes.Buffer)
	_, err := io.Copy(buf, reader)
	if err != nil {
		return "", err
	}
	r := bytes.NewReader(buf.Bytes())

	doc, err := docx.ReadDocxFromMemory(r, int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	text, err := docxPlainText(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	return text, nil
}

// docxPlainText pulls the character data out of word/document.xml. Every
// paragraph ends with a newline; tabs and breaks are kept.
func docxPlainText(documentXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))
	var (
		out    strings.Builder
		inText bool
		inRun  int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun++
			case "t":
				inText = true
			case "tab":
				// tab stops in paragraph properties are not text
				if inRun > 0 {
					out.WriteByte('\t')
				}
			case "br", "cr":
				if inRun > 0 {
					out.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun--
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return out.String(), nil
}

// Utility: get reader length for PDF
func lenReader(r io.ReaderAt) int64 {
	switch v := r.(type) {
	case *bytes.Reader:
		return v.Size()
	default:
		return 0
	}
}

func publishBatchUpdate(rabbitConn *amqp.Connection, batchID string, update map[string]any) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, _ := json.Marshal(update)
	routingKey := fmt.Sprintf("batch.%s", batchID)

	return ch.Publish(
		"batch_updates", // exchange
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
