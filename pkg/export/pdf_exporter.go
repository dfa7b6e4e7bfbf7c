package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into tabular PDFs and registration posters
// into printable A4 hand-outs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the dataset title as heading and a
// bordered table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Poster is a printable self-registration sheet embedding a QR code.
type Poster struct {
	Heading    string
	SchoolName string
	URL        string
	ExpiresAt  string
	Steps      []string
	QRPNG      []byte
}

// RenderPoster lays out an A4 poster with the QR code centred under the
// school name, followed by the join steps and the raw link for devices
// without a camera.
func (e *PDFExporter) RenderPoster(p Poster) ([]byte, error) {
	if len(p.QRPNG) == 0 {
		return nil, fmt.Errorf("poster requires QR image bytes")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	heading := p.Heading
	if heading == "" {
		heading = "Join your school"
	}
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 14, heading, "", 1, "C", false, 0, "")
	if p.SchoolName != "" {
		pdf.SetFont("Arial", "", 16)
		pdf.CellFormat(0, 10, p.SchoolName, "", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("registration-qr", opts, bytes.NewReader(p.QRPNG))
	pageWidth, _ := pdf.GetPageSize()
	qrSize := 110.0
	pdf.ImageOptions("registration-qr", (pageWidth-qrSize)/2, pdf.GetY(), qrSize, qrSize, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + qrSize + 10)

	pdf.SetFont("Arial", "", 11)
	for i, step := range p.Steps {
		pdf.CellFormat(0, 7, fmt.Sprintf("%d. %s", i+1, step), "", 1, "L", false, 0, "")
	}
	if p.URL != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, p.URL, "", 1, "C", false, 0, "")
	}
	if p.ExpiresAt != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, "Link expires: "+p.ExpiresAt, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render poster: %w", err)
	}
	return buf.Bytes(), nil
}
