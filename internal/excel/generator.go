package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/licitacoes-api/internal/model"
)

const (
	summarySheet = "Resumo"
	listSheet    = "Licitações"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.ListingReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(listSheet); err != nil {
		return nil, err
	}
	if err := g.writeRecords(file, listSheet, report.Records); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ListingReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Gerado em")
	set("B1", formatDateTime(report.GeneratedAt))
	set("A2", "Total de licitações")
	set("B2", report.Total)
	set("A3", "Valor total estimado (R$)")
	set("B3", formatAmount(sumValues(report.Records)))

	row := 5
	set(fmt.Sprintf("A%d", row), "Filtro")
	set(fmt.Sprintf("B%d", row), "Valor")
	for i, line := range describeCriteria(report.Criteria) {
		set(fmt.Sprintf("A%d", row+1+i), line[0])
		set(fmt.Sprintf("B%d", row+1+i), line[1])
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	return nil
}

func (g *Generator) writeRecords(file *excelize.File, sheet string, records []model.BiddingRecord) error {
	headers := []string{
		"ID",
		"Número",
		"Tipo",
		"Objeto",
		"Órgão",
		"Status",
		"Valor estimado (R$)",
		"Data de abertura",
		"Data de encerramento",
		"UF",
		"Cidade",
		"Modalidade de participação",
		"Link do edital",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, rec := range records {
		values := []interface{}{
			rec.ID,
			rec.Number,
			string(rec.Type),
			rec.Subject,
			rec.IssuingBody,
			string(rec.Status),
			formatValue(rec.EstimatedValue),
			rec.OpeningDate.String(),
			formatDate(rec.ClosingDate),
			string(rec.Region),
			rec.City,
			formatString(rec.ParticipationMode),
			formatString(rec.NoticeLink),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "C", 16)
	_ = file.SetColWidth(sheet, "D", "E", 45)
	_ = file.SetColWidth(sheet, "F", "J", 16)
	_ = file.SetColWidth(sheet, "K", "L", 24)
	_ = file.SetColWidth(sheet, "M", "M", 40)
	return nil
}

func describeCriteria(c model.Criteria) [][2]string {
	var lines [][2]string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, [2]string{label, value})
		}
	}

	add("Tipos", joinValues(c.Types))
	add("Status", joinValues(c.Statuses))
	add("UFs", joinValues(c.Regions))
	add("Cidades", strings.Join(c.Cities, ", "))
	add("Valor mínimo", formatValue(c.MinValue))
	add("Valor máximo", formatValue(c.MaxValue))
	add("Abertura a partir de", formatDate(c.OpeningFrom))
	add("Abertura até", formatDate(c.OpeningTo))
	add("Busca textual", c.Text)

	if len(lines) == 0 {
		lines = append(lines, [2]string{"Sem filtros", ""})
	}
	return lines
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ", ")
}

func sumValues(records []model.BiddingRecord) float64 {
	total := 0.0
	for _, rec := range records {
		total += rec.Value(0)
	}
	return total
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatDate(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatValue(value *float64) string {
	if value == nil {
		return ""
	}
	return formatAmount(*value)
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
