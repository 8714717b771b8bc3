package formatter

import (
	"bytes"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	baseTitle = "Conversation Transcript"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// FormatTranscript renders the session turns, oldest first, as a PDF
// document.
func (mf *PDFFormatter) FormatTranscript(sessionID string, turns []*entity.ConversationTurn) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 10, baseTitle)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, "Session: "+sessionID)
	pdf.Ln(10)

	_, lineHeight := pdf.GetFontSize()
	for _, turn := range turns {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 6, turn.Role+"  ("+turn.Timestamp.Format(time.RFC3339)+")")
		pdf.Ln(7)

		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, lineHeight*1.5, turn.Text, "", "", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
