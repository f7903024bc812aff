package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMime(t *testing.T) {
	tests := map[string]string{
		"cv.pdf":      mimePDF,
		"CV.PDF":      mimePDF,
		"resume.docx": mimeDocx,
		"notes.txt":   mimeText,
		"photo.png":   "",
		"noext":       "",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, DetectMime(name))
		})
	}
}

func TestExtractResumeText_PlainText(t *testing.T) {
	text, err := ExtractResumeText(mimeText, []byte("Jane Doe\njane@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com", text)
}

func TestExtractResumeText_EmptyPlainTextIsFine(t *testing.T) {
	text, err := ExtractResumeText(mimeText, nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractResumeText_Unsupported(t *testing.T) {
	_, err := ExtractResumeText("image/png", []byte{0x89, 'P', 'N', 'G'})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestExtractResumeText_CorruptPDF(t *testing.T) {
	_, err := ExtractResumeText(mimePDF, []byte("definitely not a pdf"))
	require.Error(t, err)
}

func TestExtractResumeText_CorruptDocx(t *testing.T) {
	_, err := ExtractResumeText(mimeDocx, []byte("definitely not a zip"))
	require.Error(t, err)
}

func TestExtractResumeText_PDFKeepsLines(t *testing.T) {
	data := buildPDF(t, pdfLines("Jane Doe", "jane@example.com", "Skills: Python", "Experience: 5 years"))

	text, err := ExtractResumeText(mimePDF, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com\nSkills: Python\nExperience: 5 years", text)
}

func TestExtractResumeText_PDFSkipsBlankPages(t *testing.T) {
	data := buildPDF(t,
		"",
		pdfLines("Jane Doe", "jane@example.com"),
		"BT ET",
		pdfLines("Skills: Go"),
	)

	text, err := ExtractResumeText(mimePDF, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com\nSkills: Go", text)
}

func TestExtractResumeText_PDFWithoutText(t *testing.T) {
	data := buildPDF(t, "", "BT ET", "0 0 100 100 re f")

	_, err := ExtractResumeText(mimePDF, data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoText))
}

func TestExtractResumeText_PDFWordGaps(t *testing.T) {
	// two Tj runs on one line, the second moved right
	data := buildPDF(t, "BT /F1 12 Tf 72 720 Td (Jane) Tj 40 0 Td (Doe) Tj 0 -14 Td (Skills: Go) Tj ET")

	text, err := ExtractResumeText(mimePDF, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills: Go", text)
}

func TestExtractResumeText_Docx(t *testing.T) {
	body := docxParagraph("Jane Doe") +
		docxParagraph("jane@example.com") +
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Skills:</w:t></w:r><w:r><w:tab/><w:t>Go</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Work History</w:t><w:br/><w:t>Acme &amp; Co</w:t></w:r></w:p>`

	text, err := ExtractResumeText(mimeDocx, buildDocx(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com\nSkills:\tGo\nWork History\nAcme & Co\n", text)
}
