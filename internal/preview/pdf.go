package preview

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

const (
	pdfMargin     = 10.0
	pdfLabelWidth = 55.0
	pdfLineHeight = 6.0
	pdfQRSize     = 28.0
	pdfLogoWidth  = 18.0
)

// PDFRenderer draws receipts on A4 portrait pages. The logo, when
// configured, is read once and shared by every render.
type PDFRenderer struct {
	logoPath string

	once     sync.Once
	logo     []byte
	logoType string
	assetErr error
}

func NewPDFRenderer(logoPath string) *PDFRenderer {
	return &PDFRenderer{logoPath: logoPath}
}

// Ready loads static assets and reports whether they are usable. It is
// cheap after the first call.
func (r *PDFRenderer) Ready() error {
	r.once.Do(func() {
		if r.logoPath == "" {
			return
		}
		data, err := os.ReadFile(r.logoPath)
		if err != nil {
			r.assetErr = fmt.Errorf("failed to load logo: %w", err)
			return
		}
		switch strings.ToLower(filepath.Ext(r.logoPath)) {
		case ".png":
			r.logoType = "PNG"
		case ".jpg", ".jpeg":
			r.logoType = "JPG"
		default:
			r.assetErr = fmt.Errorf("unsupported logo format %q", r.logoPath)
			return
		}
		r.logo = data
	})
	return r.assetErr
}

// Render writes doc as a PDF to w.
func (r *PDFRenderer) Render(w io.Writer, doc Document) error {
	if err := r.Ready(); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	textX := pdfMargin

	if r.logo != nil {
		opts := gofpdf.ImageOptions{ImageType: r.logoType}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(r.logo))
		pdf.ImageOptions("logo", pdfMargin, pdfMargin, pdfLogoWidth, 0, false, opts, 0, "")
		textX += pdfLogoWidth + 4
	}

	if doc.ReceiptNo != "" {
		png, err := qrcode.Encode(doc.ReceiptNo, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("failed to encode receipt QR: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("qr", pageWidth-pdfMargin-pdfQRSize, pdfMargin, pdfQRSize, pdfQRSize, false, opts, 0, "")
	}

	pdf.SetXY(textX, pdfMargin)
	pdf.SetTextColor(200, 30, 30)
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 9, tr(doc.Title))
	pdf.Ln(9)
	pdf.SetX(textX)
	pdf.SetTextColor(110, 110, 110)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, tr(doc.Subtitle))
	pdf.SetTextColor(0, 0, 0)

	pdf.SetY(pdfMargin + pdfQRSize + 4)
	for _, f := range doc.Header {
		r.row(pdf, tr, f)
	}

	for _, s := range doc.Sections {
		pdf.Ln(3)
		pdf.SetFillColor(235, 235, 235)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, tr(s.Title), "B", 1, "L", true, 0, "")
		for _, f := range s.Fields {
			r.row(pdf, tr, f)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, tr(doc.Footer), "T", "C", false)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (r *PDFRenderer) row(pdf *gofpdf.Fpdf, tr func(string) string, f Field) {
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(pdfLabelWidth, pdfLineHeight, tr(f.Label), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, pdfLineHeight, tr(f.Display()), "", "L", false)
}

// PDF is a convenience wrapper returning the rendered bytes.
func (r *PDFRenderer) PDF(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
