package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/licitacoes-api/internal/model"
)

func TestGenerateStatistics(t *testing.T) {
	value := 2500000.0
	report := model.StatisticsReport{
		GeneratedAt: time.Date(2024, time.October, 20, 9, 0, 0, 0, time.UTC),
		Statistics: model.Statistics{
			Total:               1,
			TotalEstimatedValue: value,
			ByType:              map[model.Type]int{model.TypeConcorrencia: 1},
			ByStatus:            map[model.Status]int{model.StatusEmAndamento: 1},
			ByRegion:            map[model.Region]int{"RJ": 1},
		},
		Records: []model.BiddingRecord{{
			ID:             2,
			Number:         "002/2024",
			Subject:        "Construção de escola municipal",
			Status:         model.StatusEmAndamento,
			EstimatedValue: &value,
			OpeningDate:    model.NewDate(2024, time.September, 20),
		}},
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.Greater(t, len(content), 500)
}

func TestGenerateEmptyReport(t *testing.T) {
	content, err := NewGenerator().Generate(model.StatisticsReport{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0,00", formatAmount(0))
	assert.Equal(t, "150,00", formatAmount(150))
	assert.Equal(t, "1.234.567,50", formatAmount(1234567.5))
	assert.Equal(t, "18.950.000,00", formatAmount(18950000))
	assert.Equal(t, "-1.000,00", formatAmount(-1000))
	assert.Equal(t, "-", formatValue(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "curto", truncate("curto", 10))
	assert.Equal(t, "Constru...", truncate("Construção de escola", 10))
}
