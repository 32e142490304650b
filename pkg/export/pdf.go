package export

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Letterhead is the institutional block printed on top of every document.
type Letterhead struct {
	Name       string
	Pastors    string
	City       string
	School     string
	Department string
	LogoPath   string
}

// RecordCard carries the member data printed on the enrollment record card.
type RecordCard struct {
	FullName       string
	BirthDate      string
	Address        string
	PreviousChurch string
	BaptismDate    string
	HolySpiritDate string
	Phone          string
	Photo          []byte
}

// KardexRow is one completed seminar on the transcript.
type KardexRow struct {
	Seminar    string
	Attendance string
	Grade      int
	Status     string
}

// PDFRenderer produces the fixed-layout documents handed to members.
type PDFRenderer struct {
	letterhead Letterhead
}

// NewPDFRenderer constructs a PDF renderer with the given letterhead.
func NewPDFRenderer(letterhead Letterhead) *PDFRenderer {
	return &PDFRenderer{letterhead: letterhead}
}

// RenderRecordCard draws the one-page record card. The photo box falls back
// to a FOTO placeholder when no image bytes are supplied.
func (r *PDFRenderer) RenderRecordCard(card RecordCard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; accented Spanish must go through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	r.drawLetterhead(pdf, tr)

	// Photo box at the top right corner.
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(160, 10, 40, 40, "D")
	if len(card.Photo) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "JPEG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("member-photo", opts, bytes.NewReader(card.Photo))
		pdf.ImageOptions("member-photo", 160, 10, 40, 40, false, opts, 0, "")
	} else {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(175, 31, "FOTO")
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(80, 62, "Fecha:")
	pdf.Text(100, 62, time.Now().Format("02/01/2006"))
	pdf.Line(95, 63, 150, 63)

	y := 75.0
	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(10, y, tr(label))
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(60, y, tr(value))
		pdf.Line(58, y+1, 200, y+1)
		y += 12
	}

	field("Nombre del Alumno:", card.FullName)
	field("Fecha de Nacimiento:", card.BirthDate)
	field("Dirección:", card.Address)
	field("Iglesia de Procedencia:", card.PreviousChurch)
	field("Fecha de Bautismos:", card.BaptismDate)
	field("Bautismo Espíritu Santo:", card.HolySpiritDate)
	field("Teléfono:", card.Phone)

	y += 20
	pdf.Line(70, y, 140, y)
	pdf.SetFont("Helvetica", "", 10)
	centerText(pdf, 105, y+5, tr("Firma"))

	y += 20
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(10, y, tr("El Señor le bendiga y gracias por su información."))

	return output(pdf)
}

// RenderKardex draws the transcript: letterhead, member name, one table row
// per completed seminar and the overall average.
func (r *PDFRenderer) RenderKardex(memberName string, rows []KardexRow, average int) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	r.drawLetterhead(pdf, tr)

	pdf.SetY(60)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Kárdex de Calificaciones"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, tr(memberName), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Seminario", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Asistencia", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, tr("Calificación"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Estado", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(90, 8, tr(row.Seminar), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, row.Attendance, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%d", row.Grade), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, tr(row.Status), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Promedio General: %d", average), "", 1, "R", false, 0, "")

	return output(pdf)
}

func (r *PDFRenderer) drawLetterhead(pdf *gofpdf.Fpdf, tr func(string) string) {
	if r.letterhead.LogoPath != "" {
		if _, err := os.Stat(r.letterhead.LogoPath); err == nil {
			pdf.ImageOptions(r.letterhead.LogoPath, 10, 12, 35, 35, false, gofpdf.ImageOptions{ReadDpi: false}, 0, "")
		}
	}

	pdf.SetFont("Helvetica", "B", 16)
	centerText(pdf, 105, 20, tr(r.letterhead.Name))
	pdf.SetFont("Helvetica", "", 10)
	centerText(pdf, 105, 28, tr(r.letterhead.Pastors))
	centerText(pdf, 105, 34, tr(r.letterhead.City))
	pdf.SetFont("Helvetica", "B", 10)
	centerText(pdf, 105, 42, tr(r.letterhead.School))
	centerText(pdf, 105, 50, tr(r.letterhead.Department))
}

func centerText(pdf *gofpdf.Fpdf, x, y float64, text string) {
	width := pdf.GetStringWidth(text)
	pdf.Text(x-width/2, y, text)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
