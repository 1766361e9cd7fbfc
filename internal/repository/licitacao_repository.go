package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nurpe/licitacoes-api/internal/model"
)

var ErrNotFound = errors.New("record not found")

// LicitacaoRepository serves the static mock dataset. Records are built once and
// never mutated, so the repository is safe for concurrent readers without locking.
type LicitacaoRepository struct {
	records []model.BiddingRecord
	byID    map[int64]int
}

func NewLicitacaoRepository(records []model.BiddingRecord) *LicitacaoRepository {
	owned := make([]model.BiddingRecord, len(records))
	copy(owned, records)

	byID := make(map[int64]int, len(owned))
	for i, rec := range owned {
		if _, exists := byID[rec.ID]; !exists {
			byID[rec.ID] = i
		}
	}
	return &LicitacaoRepository{records: owned, byID: byID}
}

func NewMockRepository(loadedAt time.Time) *LicitacaoRepository {
	return NewLicitacaoRepository(MockRecords(loadedAt))
}

// List returns a copy of the dataset; callers may reorder it freely.
func (r *LicitacaoRepository) List(_ context.Context) []model.BiddingRecord {
	out := make([]model.BiddingRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *LicitacaoRepository) GetByID(_ context.Context, id int64) (*model.BiddingRecord, error) {
	pos, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := r.records[pos]
	return &rec, nil
}

func (r *LicitacaoRepository) Count() int {
	return len(r.records)
}

func MockRecords(loadedAt time.Time) []model.BiddingRecord {
	rec := func(
		id int64,
		number string,
		typ model.Type,
		subject, body string,
		status model.Status,
		value float64,
		opening, closing model.Date,
		uf model.Region,
		city, mode, link string,
	) model.BiddingRecord {
		return model.BiddingRecord{
			ID:                id,
			Number:            number,
			Type:              typ,
			Subject:           subject,
			IssuingBody:       body,
			Status:            status,
			EstimatedValue:    &value,
			OpeningDate:       opening,
			ClosingDate:       &closing,
			Region:            uf,
			City:              city,
			ParticipationMode: &mode,
			NoticeLink:        &link,
			CreatedAt:         loadedAt,
			UpdatedAt:         loadedAt,
		}
	}

	return []model.BiddingRecord{
		rec(1, "001/2024", model.TypePregao,
			"Aquisição de equipamentos de informática", "Prefeitura Municipal de São Paulo",
			model.StatusAberta, 150000.00,
			model.NewDate(2024, time.October, 15), model.NewDate(2024, time.November, 15),
			"SP", "São Paulo", "Presencial/Online", "https://exemplo.com/edital1"),
		rec(2, "002/2024", model.TypeConcorrencia,
			"Construção de escola municipal", "Governo do Estado do Rio de Janeiro",
			model.StatusEmAndamento, 2500000.00,
			model.NewDate(2024, time.September, 20), model.NewDate(2024, time.December, 20),
			"RJ", "Rio de Janeiro", "Presencial", "https://exemplo.com/edital2"),
		rec(3, "003/2024", model.TypeTomadaPrecos,
			"Serviços de limpeza urbana", "Prefeitura de Brasília",
			model.StatusAberta, 800000.00,
			model.NewDate(2024, time.October, 10), model.NewDate(2024, time.November, 30),
			"DF", "Brasília", "Online", "https://exemplo.com/edital3"),
		rec(4, "004/2024", model.TypePregao,
			"Aquisição de medicamentos", "Hospital Regional de Salvador",
			model.StatusAberta, 500000.00,
			model.NewDate(2024, time.October, 25), model.NewDate(2024, time.December, 15),
			"BA", "Salvador", "Online", "https://exemplo.com/edital4"),
		rec(5, "005/2024", model.TypeRDC,
			"Construção de ponte", "DNIT - Departamento Nacional de Infraestrutura",
			model.StatusEncerrada, 15000000.00,
			model.NewDate(2024, time.August, 1), model.NewDate(2024, time.September, 30),
			"MG", "Belo Horizonte", "Presencial", "https://exemplo.com/edital5"),
	}
}
