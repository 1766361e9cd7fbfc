package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/licitacoes-api/internal/model"
	"github.com/nurpe/licitacoes-api/internal/repository"
	"github.com/nurpe/licitacoes-api/internal/service"
	"github.com/nurpe/licitacoes-api/internal/upstream"
)

type fakePNCP struct {
	mu         sync.Mutex
	SearchFunc func(ctx context.Context, params upstream.PNCPSearchParams) (*upstream.PNCPPage, error)
	OrgansFunc func(ctx context.Context, page, pageSize int) (json.RawMessage, error)
	calls      []upstream.PNCPSearchParams
}

func (f *fakePNCP) Search(ctx context.Context, params upstream.PNCPSearchParams) (*upstream.PNCPPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, params)
	}
	return &upstream.PNCPPage{Data: []json.RawMessage{}}, nil
}

func (f *fakePNCP) Organs(ctx context.Context, page, pageSize int) (json.RawMessage, error) {
	if f.OrgansFunc != nil {
		return f.OrgansFunc(ctx, page, pageSize)
	}
	return json.RawMessage(`{"data":[],"totalElements":0}`), nil
}

type fakeTransparencia struct {
	SearchFunc func(ctx context.Context, params upstream.TransparenciaSearchParams) ([]json.RawMessage, error)
}

func (f *fakeTransparencia) Search(ctx context.Context, params upstream.TransparenciaSearchParams) ([]json.RawMessage, error) {
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, params)
	}
	return []json.RawMessage{}, nil
}

func pncpPage(total int, items ...string) *upstream.PNCPPage {
	page := &upstream.PNCPPage{TotalElements: total}
	for _, it := range items {
		page.Data = append(page.Data, json.RawMessage(it))
	}
	return page
}

func newAggregator(pncp service.PNCPAPI, transparencia service.TransparenciaAPI) *service.Aggregator {
	log := zerolog.Nop()
	return service.NewAggregator(
		repository.NewMockRepository(time.Now()),
		service.NewPNCPFetcher(pncp, log),
		service.NewTransparenciaFetcher(transparencia, log),
		log,
	)
}

func TestConsolidateRegistrationOrder(t *testing.T) {
	pncp := &fakePNCP{SearchFunc: func(ctx context.Context, _ upstream.PNCPSearchParams) (*upstream.PNCPPage, error) {
		// completes last
		time.Sleep(20 * time.Millisecond)
		return pncpPage(40, `{"sequencialLicitacao": 100}`, `{"sequencialLicitacao": 101}`), nil
	}}
	transparencia := &fakeTransparencia{SearchFunc: func(context.Context, upstream.TransparenciaSearchParams) ([]json.RawMessage, error) {
		return []json.RawMessage{json.RawMessage(`{"id": 200}`)}, nil
	}}

	result := newAggregator(pncp, transparencia).Consolidate(context.Background(), service.ConsolidatedQuery{
		IncludeMock:          true,
		IncludePNCP:          true,
		IncludeTransparencia: true,
		Page:                 1,
		PageSize:             20,
	})

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 100, 101, 200}, ids(result.Records))
	require.Len(t, result.Sources, 3)
	assert.Equal(t, service.SourceMock, result.Sources[0].Source)
	assert.Equal(t, service.SourcePNCP, result.Sources[1].Source)
	assert.Equal(t, 40, result.Sources[1].Total)
	assert.Equal(t, 2, result.Sources[1].Retrieved())
	assert.Equal(t, service.SourceTransparencia, result.Sources[2].Source)
}

func TestConsolidateDegradesFailedSource(t *testing.T) {
	pncp := &fakePNCP{SearchFunc: func(context.Context, upstream.PNCPSearchParams) (*upstream.PNCPPage, error) {
		return nil, &upstream.StatusError{Source: upstream.SourcePNCP, StatusCode: 503}
	}}
	transparencia := &fakeTransparencia{SearchFunc: func(context.Context, upstream.TransparenciaSearchParams) ([]json.RawMessage, error) {
		return []json.RawMessage{json.RawMessage(`{"id": 7, "licitacao": {"numero": "7/2024"}}`)}, nil
	}}

	result := newAggregator(pncp, transparencia).Consolidate(context.Background(), service.ConsolidatedQuery{
		IncludePNCP:          true,
		IncludeTransparencia: true,
		Page:                 1,
		PageSize:             20,
	})

	require.Len(t, result.Sources, 2)
	assert.True(t, result.Sources[0].Unavailable)
	assert.NotEmpty(t, result.Sources[0].Warning)
	assert.Empty(t, result.Sources[0].Records)
	assert.False(t, result.Sources[1].Unavailable)
	assert.Equal(t, []int64{7}, ids(result.Records))
}

func TestConsolidateWithoutSourcesFallsBackToMock(t *testing.T) {
	result := newAggregator(&fakePNCP{}, &fakeTransparencia{}).Consolidate(context.Background(), service.ConsolidatedQuery{
		From: model.NewDate(2030, time.January, 1),
	})

	require.Len(t, result.Sources, 1)
	assert.Equal(t, service.SourceMock, result.Sources[0].Source)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(result.Records))
}

func TestConsolidateMockHonoursDateRange(t *testing.T) {
	result := newAggregator(&fakePNCP{}, &fakeTransparencia{}).Consolidate(context.Background(), service.ConsolidatedQuery{
		From:        model.NewDate(2024, time.October, 1),
		To:          model.NewDate(2024, time.October, 20),
		IncludeMock: true,
		Page:        1,
		PageSize:    20,
	})

	assert.Equal(t, []int64{1, 3}, ids(result.Records))
	assert.Equal(t, 2, result.Sources[0].Total)
}

func TestConsolidateForwardsQuery(t *testing.T) {
	pncp := &fakePNCP{}
	from := model.NewDate(2024, time.June, 1)

	newAggregator(pncp, &fakeTransparencia{}).Consolidate(context.Background(), service.ConsolidatedQuery{
		From:        from,
		CNPJ:        "00394460000141",
		Modality:    "6",
		IncludePNCP: true,
		Page:        3,
		PageSize:    15,
	})

	require.Len(t, pncp.calls, 1)
	call := pncp.calls[0]
	assert.Equal(t, "00394460000141", call.CNPJ)
	assert.Equal(t, "6", call.Modality)
	assert.Equal(t, 3, call.Page)
	assert.Equal(t, 15, call.PageSize)
	assert.True(t, from.Equal(call.From.Time))
}

func TestPNCPFetcherOrgansFailure(t *testing.T) {
	fetcher := service.NewPNCPFetcher(&fakePNCP{OrgansFunc: func(context.Context, int, int) (json.RawMessage, error) {
		return nil, errors.New("connection refused")
	}}, zerolog.Nop())

	body, ok := fetcher.Organs(context.Background(), 1, 10)
	assert.False(t, ok)
	assert.JSONEq(t, `{"data":[],"totalElements":0}`, string(body))
}
