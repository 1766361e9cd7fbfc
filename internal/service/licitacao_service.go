package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitacoes-api/internal/model"
	"github.com/nurpe/licitacoes-api/internal/repository"
)

const (
	MaxUpstreamPageSize = 500
)

type RecordStore interface {
	List(ctx context.Context) []model.BiddingRecord
	GetByID(ctx context.Context, id int64) (*model.BiddingRecord, error)
}

type ExcelGenerator interface {
	Generate(report model.ListingReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.StatisticsReport) ([]byte, error)
}

type LicitacaoService struct {
	records       RecordStore
	pncp          *PNCPFetcher
	transparencia *TransparenciaFetcher
	aggregator    *Aggregator
	excel         ExcelGenerator
	pdf           PDFGenerator
	log           zerolog.Logger
	now           func() time.Time
}

type Dependencies struct {
	Records       RecordStore
	PNCP          PNCPAPI
	Transparencia TransparenciaAPI
	Excel         ExcelGenerator
	PDF           PDFGenerator
}

func NewLicitacaoService(deps Dependencies, log zerolog.Logger) *LicitacaoService {
	var pncp *PNCPFetcher
	if deps.PNCP != nil {
		pncp = NewPNCPFetcher(deps.PNCP, log)
	}
	var transparencia *TransparenciaFetcher
	if deps.Transparencia != nil {
		transparencia = NewTransparenciaFetcher(deps.Transparencia, log)
	}
	return &LicitacaoService{
		records:       deps.Records,
		pncp:          pncp,
		transparencia: transparencia,
		aggregator:    NewAggregator(deps.Records, pncp, transparencia, log),
		excel:         deps.Excel,
		pdf:           deps.PDF,
		log:           log.With().Str("component", "licitacao_service").Logger(),
		now:           time.Now,
	}
}

type SearchInput struct {
	Criteria model.Criteria
	Limit    int
	Offset   int
	SortBy   string
	Desc     bool
}

type SearchResult struct {
	Items   []model.BiddingRecord
	Total   int
	Limit   int
	Offset  int
	HasNext bool
}

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func (s *LicitacaoService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	if input.Limit < 1 || input.Limit > MaxLimit {
		return nil, fmt.Errorf("%w: limite must be between 1 and %d", ErrInvalidInput, MaxLimit)
	}
	if input.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be non-negative", ErrInvalidInput)
	}

	sorted, total, err := s.filterAndSort(ctx, input)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Items:   Paginate(sorted, input.Offset, input.Limit),
		Total:   total,
		Limit:   input.Limit,
		Offset:  input.Offset,
		HasNext: HasNextPage(input.Offset, input.Limit, total),
	}, nil
}

func (s *LicitacaoService) filterAndSort(ctx context.Context, input SearchInput) ([]model.BiddingRecord, int, error) {
	if err := input.Criteria.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	field := input.SortBy
	if field == "" {
		field = DefaultSortField
	}
	matched, total := Filter(s.records.List(ctx), input.Criteria.Normalized())
	return Sort(matched, field, input.Desc), total, nil
}

func (s *LicitacaoService) GetByID(ctx context.Context, id int64) (*model.BiddingRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *LicitacaoService) Cities(ctx context.Context, region *model.Region) []string {
	return Cities(s.records.List(ctx), region)
}

func (s *LicitacaoService) Statistics(ctx context.Context) model.Statistics {
	return ComputeStatistics(s.records.List(ctx))
}

func (s *LicitacaoService) PNCP(ctx context.Context, q PNCPQuery) (SourceResult, error) {
	if q.Page < 1 {
		return SourceResult{}, fmt.Errorf("%w: pagina must be >= 1", ErrInvalidInput)
	}
	if q.PageSize < 1 || q.PageSize > MaxUpstreamPageSize {
		return SourceResult{}, fmt.Errorf("%w: tamanho_pagina must be between 1 and %d", ErrInvalidInput, MaxUpstreamPageSize)
	}
	if s.pncp == nil {
		return unavailable(SourcePNCP), nil
	}
	return s.pncp.Fetch(ctx, q), nil
}

func (s *LicitacaoService) Transparencia(ctx context.Context, q TransparenciaQuery) (SourceResult, error) {
	if q.Page < 1 {
		return SourceResult{}, fmt.Errorf("%w: pagina must be >= 1", ErrInvalidInput)
	}
	if s.transparencia == nil {
		return unavailable(SourceTransparencia), nil
	}
	return s.transparencia.Fetch(ctx, q), nil
}

// PNCPOrgans proxies the PNCP organ listing. ok is false when the upstream failed.
func (s *LicitacaoService) PNCPOrgans(ctx context.Context, page, pageSize int) (json.RawMessage, bool, error) {
	if page < 1 {
		return nil, false, fmt.Errorf("%w: pagina must be >= 1", ErrInvalidInput)
	}
	if pageSize < 1 || pageSize > MaxUpstreamPageSize {
		return nil, false, fmt.Errorf("%w: tamanho_pagina must be between 1 and %d", ErrInvalidInput, MaxUpstreamPageSize)
	}
	if s.pncp == nil {
		return json.RawMessage(`{"data":[],"totalElements":0}`), false, nil
	}
	body, ok := s.pncp.Organs(ctx, page, pageSize)
	return body, ok, nil
}

func (s *LicitacaoService) Consolidate(ctx context.Context, q ConsolidatedQuery) (*ConsolidatedResult, error) {
	if q.Page < 1 {
		return nil, fmt.Errorf("%w: pagina must be >= 1", ErrInvalidInput)
	}
	if q.PageSize < 1 || q.PageSize > MaxUpstreamPageSize {
		return nil, fmt.Errorf("%w: tamanho_pagina must be between 1 and %d", ErrInvalidInput, MaxUpstreamPageSize)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To.Time) {
		return nil, fmt.Errorf("%w: data_inicio must be before or equal to data_fim", ErrInvalidInput)
	}
	return s.aggregator.Consolidate(ctx, q), nil
}

// ExportXLSX renders every record matching the criteria, ignoring pagination.
func (s *LicitacaoService) ExportXLSX(ctx context.Context, input SearchInput) (*ExportResult, error) {
	sorted, total, err := s.filterAndSort(ctx, input)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	content, err := s.excel.Generate(model.ListingReport{
		GeneratedAt: generatedAt,
		Criteria:    input.Criteria,
		Total:       total,
		Records:     sorted,
	})
	if err != nil {
		return nil, fmt.Errorf("generate xlsx: %w", err)
	}

	return &ExportResult{
		FileName:    fmt.Sprintf("licitacoes-%s.xlsx", generatedAt.Format("20060102-150405")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func (s *LicitacaoService) StatisticsPDF(ctx context.Context) (*ExportResult, error) {
	records := s.records.List(ctx)
	generatedAt := s.now()

	content, err := s.pdf.Generate(model.StatisticsReport{
		GeneratedAt: generatedAt,
		Statistics:  ComputeStatistics(records),
		Records:     records,
	})
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}

	return &ExportResult{
		FileName:    fmt.Sprintf("estatisticas-%s.pdf", generatedAt.Format("20060102")),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}
