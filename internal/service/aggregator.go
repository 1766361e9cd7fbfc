package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/licitacoes-api/internal/model"
)

type ConsolidatedQuery struct {
	From     model.Date
	To       model.Date
	CNPJ     string
	Modality string
	OrgCode  string

	IncludeMock          bool
	IncludePNCP          bool
	IncludeTransparencia bool

	Page     int
	PageSize int
}

type ConsolidatedResult struct {
	Sources []SourceResult
	Records []model.BiddingRecord
}

// Aggregator fans a consolidated query out to the enabled sources and
// concatenates their records in registration order: mock, PNCP, Transparência.
type Aggregator struct {
	records       RecordStore
	pncp          *PNCPFetcher
	transparencia *TransparenciaFetcher
	log           zerolog.Logger
}

func NewAggregator(records RecordStore, pncp *PNCPFetcher, transparencia *TransparenciaFetcher, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		records:       records,
		pncp:          pncp,
		transparencia: transparencia,
		log:           log.With().Str("component", "aggregator").Logger(),
	}
}

type sourceCall func(ctx context.Context) SourceResult

func (a *Aggregator) Consolidate(ctx context.Context, q ConsolidatedQuery) *ConsolidatedResult {
	var calls []sourceCall

	if q.IncludeMock {
		calls = append(calls, func(ctx context.Context) SourceResult {
			return a.mock(ctx, q.From, q.To)
		})
	}
	if q.IncludePNCP && a.pncp != nil {
		calls = append(calls, func(ctx context.Context) SourceResult {
			return a.pncp.Fetch(ctx, PNCPQuery{
				CNPJ:     q.CNPJ,
				From:     q.From,
				To:       q.To,
				Modality: q.Modality,
				Page:     q.Page,
				PageSize: q.PageSize,
			})
		})
	}
	if q.IncludeTransparencia && a.transparencia != nil {
		calls = append(calls, func(ctx context.Context) SourceResult {
			return a.transparencia.Fetch(ctx, TransparenciaQuery{
				OrgCode: q.OrgCode,
				From:    q.From,
				To:      q.To,
				Page:    q.Page,
			})
		})
	}

	if len(calls) == 0 {
		all := a.records.List(ctx)
		return &ConsolidatedResult{
			Sources: []SourceResult{{Source: SourceMock, Records: all, Total: len(all)}},
			Records: all,
		}
	}

	results := make([]SourceResult, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			results[i] = call(ctx)
			return nil
		})
	}
	_ = g.Wait()

	combined := make([]model.BiddingRecord, 0)
	for _, res := range results {
		combined = append(combined, res.Records...)
	}

	a.log.Debug().Int("sources", len(results)).Int("records", len(combined)).Msg("consolidated query completed")
	return &ConsolidatedResult{Sources: results, Records: combined}
}

// mock applies the shared opening-date range to the static dataset.
func (a *Aggregator) mock(ctx context.Context, from, to model.Date) SourceResult {
	criteria := model.Criteria{}
	if !from.IsZero() {
		criteria.OpeningFrom = &from
	}
	if !to.IsZero() {
		criteria.OpeningTo = &to
	}
	records, total := Filter(a.records.List(ctx), criteria)
	return SourceResult{Source: SourceMock, Records: records, Total: total}
}
