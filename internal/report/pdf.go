// Package report renders analysis text into a downloadable PDF, including
// the first captured frame as a thumbnail and any pipe-delimited tables the
// model produced.
package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
)

// DefaultTitle is the heading used when a document carries no title.
const DefaultTitle = "Eye Photo + Gemini Notes"

// The thumbnail is scaled down to fit this box, never scaled up.
const (
	thumbMaxWidth  = 440
	thumbMaxHeight = 280
)

// Markdown table separator rows ("|---|---|") carry no data.
var tableSeparator = regexp.MustCompile(`^[\|\s\-:]+$`)

// Document is the input to Build.
type Document struct {
	Title     string
	Thumbnail []byte // optional JPEG or PNG shown under the title
	Body      string // analysis text, possibly containing pipe tables
}

// Build renders the document to PDF bytes.
func Build(doc Document) ([]byte, error) {
	title := doc.Title
	if title == "" {
		title = DefaultTitle
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(72, 72, 72)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(26, 26, 26)
	pdf.MultiCell(0, 20, tr(title), "", "L", false)
	pdf.Ln(10)

	if len(doc.Thumbnail) > 0 {
		if err := drawThumbnail(pdf, doc.Thumbnail); err != nil {
			return nil, err
		}
	}

	renderBody(pdf, tr, doc.Body)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawThumbnail(pdf *fpdf.Fpdf, img []byte) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return fmt.Errorf("report: decode thumbnail: %w", err)
	}

	w, h := fitBox(float64(cfg.Width), float64(cfg.Height), thumbMaxWidth, thumbMaxHeight)

	opts := fpdf.ImageOptions{ImageType: strings.ToUpper(format)}
	pdf.RegisterImageOptionsReader("thumbnail", opts, bytes.NewReader(img))
	if pdf.Err() {
		return fmt.Errorf("report: register thumbnail: %w", pdf.Error())
	}

	y := pdf.GetY()
	pdf.ImageOptions("thumbnail", 72, y, w, h, false, opts, 0, "")
	pdf.SetY(y + h + 14)
	return nil
}

// fitBox scales (w, h) down to fit within (maxW, maxH), keeping the aspect
// ratio. Images already inside the box keep their size.
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := 1.0
	if w > maxW {
		scale = maxW / w
	}
	if h*scale > maxH {
		scale = maxH / h
	}
	return w * scale, h * scale
}

// renderBody walks the text line by line. A line containing a pipe that is
// followed by another pipe line opens a table block; blank lines become
// vertical space; everything else is a paragraph.
func renderBody(pdf *fpdf.Fpdf, tr func(string) string, body string) {
	lines := strings.Split(body, "\n")

	for i := 0; i < len(lines); {
		stripped := strings.TrimSpace(lines[i])

		if stripped == "" {
			pdf.Ln(8)
			i++
			continue
		}

		if strings.Contains(stripped, "|") && i+1 < len(lines) && strings.Contains(lines[i+1], "|") {
			var rows [][]string
			for i < len(lines) && strings.Contains(strings.TrimSpace(lines[i]), "|") {
				row := strings.TrimSpace(lines[i])
				i++
				if tableSeparator.MatchString(row) {
					continue
				}
				if cells := splitTableRow(row); len(cells) > 0 {
					rows = append(rows, cells)
				}
			}
			if len(rows) > 0 {
				drawTable(pdf, tr, rows)
				pdf.Ln(12)
			}
			continue
		}

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(26, 26, 26)
		pdf.MultiCell(0, 14, tr(stripped), "", "L", false)
		pdf.Ln(6)
		i++
	}
}

// splitTableRow breaks a pipe-delimited row into trimmed, non-empty cells.
func splitTableRow(row string) []string {
	var cells []string
	for _, cell := range strings.Split(row, "|") {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// drawTable renders rows as a grid. The first row is the header, drawn on a
// blue fill; remaining rows sit on a light fill. Short rows are padded so
// every line spans the full grid.
func drawTable(pdf *fpdf.Fpdf, tr func(string) string, rows [][]string) {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(cols)

	pdf.SetDrawColor(128, 128, 128)
	pdf.SetLineWidth(0.5)

	for r, row := range rows {
		if r == 0 {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetFillColor(52, 152, 219)
			pdf.SetTextColor(245, 245, 245)
		} else {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.SetTextColor(26, 26, 26)
		}

		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			pdf.CellFormat(colW, 22, tr(cell), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
}
