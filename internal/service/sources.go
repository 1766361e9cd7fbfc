package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitacoes-api/internal/model"
	"github.com/nurpe/licitacoes-api/internal/normalize"
	"github.com/nurpe/licitacoes-api/internal/upstream"
)

const (
	SourceMock          = "mock"
	SourcePNCP          = upstream.SourcePNCP
	SourceTransparencia = upstream.SourceTransparencia

	unavailableWarning = "fonte indisponível no momento; resultados podem estar incompletos"
)

var normalizeSkippedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "licitacoes_normalize_skipped_total",
		Help: "Upstream items dropped because they could not be normalized.",
	},
	[]string{"source"},
)

type PNCPAPI interface {
	Search(ctx context.Context, params upstream.PNCPSearchParams) (*upstream.PNCPPage, error)
	Organs(ctx context.Context, page, pageSize int) (json.RawMessage, error)
}

type TransparenciaAPI interface {
	Search(ctx context.Context, params upstream.TransparenciaSearchParams) ([]json.RawMessage, error)
}

// SourceResult is what one source contributed to a response. Upstream failures
// leave Records empty and set Unavailable instead of returning an error.
type SourceResult struct {
	Source      string
	Records     []model.BiddingRecord
	Total       int
	Skipped     int
	Unavailable bool
	Warning     string
}

func (r SourceResult) Retrieved() int {
	return len(r.Records)
}

func unavailable(source string) SourceResult {
	return SourceResult{
		Source:      source,
		Records:     []model.BiddingRecord{},
		Unavailable: true,
		Warning:     unavailableWarning,
	}
}

type PNCPQuery struct {
	CNPJ     string
	From     model.Date
	To       model.Date
	Modality string
	Page     int
	PageSize int
}

type TransparenciaQuery struct {
	OrgCode string
	From    model.Date
	To      model.Date
	Page    int
}

type PNCPFetcher struct {
	api PNCPAPI
	log zerolog.Logger
	now func() time.Time
}

func NewPNCPFetcher(api PNCPAPI, log zerolog.Logger) *PNCPFetcher {
	return &PNCPFetcher{
		api: api,
		log: log.With().Str("component", "pncp_source").Logger(),
		now: time.Now,
	}
}

func (f *PNCPFetcher) Fetch(ctx context.Context, q PNCPQuery) SourceResult {
	page, err := f.api.Search(ctx, upstream.PNCPSearchParams{
		CNPJ:     q.CNPJ,
		From:     q.From,
		To:       q.To,
		Modality: q.Modality,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		f.log.Warn().Err(err).Msg("pncp search failed, returning empty result")
		return unavailable(SourcePNCP)
	}
	if page == nil {
		return SourceResult{Source: SourcePNCP, Records: []model.BiddingRecord{}}
	}

	result := normalize.PNCP(page.Data, f.now())
	reportSkipped(f.log, SourcePNCP, result)
	return SourceResult{
		Source:  SourcePNCP,
		Records: result.Records,
		Total:   page.TotalElements,
		Skipped: len(result.Skipped),
	}
}

// Organs degrades to an empty PNCP page body on failure.
func (f *PNCPFetcher) Organs(ctx context.Context, page, pageSize int) (json.RawMessage, bool) {
	body, err := f.api.Organs(ctx, page, pageSize)
	if err != nil || len(body) == 0 {
		if err != nil {
			f.log.Warn().Err(err).Msg("pncp organs listing failed, returning empty result")
		}
		return json.RawMessage(`{"data":[],"totalElements":0}`), err == nil
	}
	return body, true
}

type TransparenciaFetcher struct {
	api TransparenciaAPI
	log zerolog.Logger
	now func() time.Time
}

func NewTransparenciaFetcher(api TransparenciaAPI, log zerolog.Logger) *TransparenciaFetcher {
	return &TransparenciaFetcher{
		api: api,
		log: log.With().Str("component", "transparencia_source").Logger(),
		now: time.Now,
	}
}

func (f *TransparenciaFetcher) Fetch(ctx context.Context, q TransparenciaQuery) SourceResult {
	items, err := f.api.Search(ctx, upstream.TransparenciaSearchParams{
		OrgCode: q.OrgCode,
		From:    q.From,
		To:      q.To,
		Page:    q.Page,
	})
	if err != nil {
		f.log.Warn().Err(err).Msg("transparencia search failed, returning empty result")
		return unavailable(SourceTransparencia)
	}

	result := normalize.Transparencia(items, f.now())
	reportSkipped(f.log, SourceTransparencia, result)
	return SourceResult{
		Source:  SourceTransparencia,
		Records: result.Records,
		Total:   len(items),
		Skipped: len(result.Skipped),
	}
}

func reportSkipped(log zerolog.Logger, source string, result normalize.Result) {
	if n := len(result.Skipped); n > 0 {
		normalizeSkippedTotal.WithLabelValues(source).Add(float64(n))
		for _, skipped := range result.Skipped {
			log.Debug().Err(skipped.Err).Int("index", skipped.Index).Msg("skipping malformed item")
		}
	}
	for _, rec := range result.Records {
		if rec.DateWarning() {
			log.Warn().Int64("id", rec.ID).Str("numero", rec.Number).Msg("closing date precedes opening date")
		}
	}
}
