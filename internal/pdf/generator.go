package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/licitacoes-api/internal/model"
)

// Generator renders the statistics report with the PDF core fonts; text goes
// through a cp1252 translator so Portuguese accents survive.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.StatisticsReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Estatísticas de licitações"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Gerado em %s", formatDateTime(report.GeneratedAt))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	stats := report.Statistics
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Total de licitações: %d", stats.Total)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Valor total estimado: R$ %s", formatAmount(stats.TotalEstimatedValue))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	g.distribution(pdf, tr, "Distribuição por tipo", countRows(stats.ByType))
	g.distribution(pdf, tr, "Distribuição por status", countRows(stats.ByStatus))
	g.distribution(pdf, tr, "Distribuição por UF", countRows(stats.ByRegion))

	if len(report.Records) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, tr("Licitações"), "", 1, "L", false, 0, "")
		widths := []float64{22, 70, 28, 25, 35}
		drawTableRow(pdf, g.fontName, tr, []string{"Número", "Objeto", "Status", "Abertura", "Valor (R$)"}, widths, true)
		for _, rec := range report.Records {
			drawTableRow(pdf, g.fontName, tr, []string{
				rec.Number,
				truncate(rec.Subject, 42),
				string(rec.Status),
				formatDate(rec.OpeningDate),
				formatValue(rec.EstimatedValue),
			}, widths, false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) distribution(pdf *gofpdf.Fpdf, tr func(string) string, title string, rows [][2]string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	widths := []float64{60, 30}
	drawTableRow(pdf, g.fontName, tr, []string{"Valor", "Quantidade"}, widths, true)
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, tr, row[:], widths, false)
	}
	pdf.Ln(3)
}

func countRows[K ~string](counts map[K]int) [][2]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{safeValue(k), fmt.Sprintf("%d", counts[K(k)])})
	}
	return rows
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatValue(value *float64) string {
	if value == nil {
		return "-"
	}
	return formatAmount(*value)
}

// formatAmount prints 1234567.5 as 1.234.567,50.
func formatAmount(value float64) string {
	raw := fmt.Sprintf("%.2f", value)
	intPart, frac := raw[:len(raw)-3], raw[len(raw)-2:]
	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac
	if negative {
		out = "-" + out
	}
	return out
}

func formatDate(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("02/01/2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006 15:04")
}
