package normalize_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/licitacoes-api/internal/model"
	"github.com/nurpe/licitacoes-api/internal/normalize"
)

var now = time.Date(2024, time.November, 1, 9, 0, 0, 0, time.UTC)

func raw(t *testing.T, items ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		out = append(out, json.RawMessage(it))
	}
	return out
}

func TestMapType(t *testing.T) {
	cases := map[string]model.Type{
		"PREGAO":           model.TypePregao,
		"Pregão":           model.TypePregao,
		"CONCORRENCIA":     model.TypeConcorrencia,
		"Concorrência":     model.TypeConcorrencia,
		"TOMADA_PRECOS":    model.TypeTomadaPrecos,
		"Tomada de Preços": model.TypeTomadaPrecos,
		"convite":          model.TypeConvite,
		"RDC":              model.TypeRDC,
		"Concurso":         model.TypeConcurso,
		"Leilão":           model.TypeLeilao,
		"Dispensa":         normalize.DefaultType,
		"":                 normalize.DefaultType,
	}
	for code, want := range cases {
		assert.Equal(t, want, normalize.MapType(code), code)
	}
}

func TestMapStatus(t *testing.T) {
	cases := map[string]model.Status{
		"ABERTA":       model.StatusAberta,
		"Em andamento": model.StatusEmAndamento,
		"EM_ANDAMENTO": model.StatusEmAndamento,
		"Encerrada":    model.StatusEncerrada,
		"SUSPENSA":     model.StatusSuspensa,
		"Cancelada":    model.StatusCancelada,
		"Homologada":   normalize.DefaultStatus,
	}
	for code, want := range cases {
		assert.Equal(t, want, normalize.MapStatus(code), code)
	}
}

func TestPNCPFullItem(t *testing.T) {
	result := normalize.PNCP(raw(t, `{
		"sequencialLicitacao": 42,
		"numeroLicitacao": "90001/2024",
		"modalidadeContratacao": "Concorrência",
		"objetoLicitacao": "Reforma de unidade básica de saúde",
		"nomeOrgao": "Município de Campinas",
		"situacaoLicitacao": "Em andamento",
		"valorEstimado": 123456.78,
		"dataAbertura": "2024-10-01T10:00:00",
		"dataEncerramento": "2024-10-30",
		"ufOrgao": "sp",
		"cidadeOrgao": "Campinas",
		"linkEdital": "https://pncp.gov.br/edital/42"
	}`), now)

	require.Empty(t, result.Skipped)
	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, int64(42), rec.ID)
	assert.Equal(t, "90001/2024", rec.Number)
	assert.Equal(t, model.TypeConcorrencia, rec.Type)
	assert.Equal(t, model.StatusEmAndamento, rec.Status)
	require.NotNil(t, rec.EstimatedValue)
	assert.InDelta(t, 123456.78, *rec.EstimatedValue, 0.001)
	assert.Equal(t, "2024-10-01", rec.OpeningDate.String())
	require.NotNil(t, rec.ClosingDate)
	assert.Equal(t, "2024-10-30", rec.ClosingDate.String())
	assert.Equal(t, model.Region("SP"), rec.Region)
	assert.Equal(t, "Campinas", rec.City)
	require.NotNil(t, rec.ParticipationMode)
	assert.Equal(t, "Concorrência", *rec.ParticipationMode)
	require.NotNil(t, rec.NoticeLink)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestPNCPDefaultsAndFallbackID(t *testing.T) {
	result := normalize.PNCP(raw(t,
		`{"numeroLicitacao": "A-1"}`,
		`{"objetoLicitacao": "Compra de mobiliário", "valorEstimado": null}`,
	), now)

	require.Empty(t, result.Skipped)
	require.Len(t, result.Records, 2)

	first, second := result.Records[0], result.Records[1]
	assert.Equal(t, int64(-1), first.ID)
	assert.Equal(t, int64(-2), second.ID)
	assert.Equal(t, normalize.DefaultType, first.Type)
	assert.Equal(t, normalize.DefaultStatus, first.Status)
	assert.Nil(t, first.EstimatedValue)
	assert.Nil(t, second.EstimatedValue)
	assert.True(t, first.OpeningDate.IsZero())
	assert.Nil(t, first.ClosingDate)
	assert.Nil(t, first.ParticipationMode)
	assert.Equal(t, model.Region(""), first.Region)
}

func TestPNCPWellFormedAndEmptyItem(t *testing.T) {
	result := normalize.PNCP(raw(t,
		`{
			"sequencialLicitacao": 1,
			"numeroLicitacao": "001/2024",
			"modalidadeContratacao": "CONCORRENCIA",
			"objetoLicitacao": "Pavimentação de vias",
			"nomeOrgao": "Prefeitura de Curitiba",
			"situacaoLicitacao": "ENCERRADA",
			"valorEstimado": 320000,
			"dataAbertura": "2024-09-01",
			"ufOrgao": "PR",
			"cidadeOrgao": "Curitiba"
		}`,
		`{}`,
	), now)

	require.Empty(t, result.Skipped)
	require.Len(t, result.Records, 2)

	full, empty := result.Records[0], result.Records[1]
	assert.Equal(t, int64(1), full.ID)
	assert.Equal(t, model.TypeConcorrencia, full.Type)
	assert.Equal(t, model.StatusEncerrada, full.Status)

	assert.NotZero(t, empty.ID)
	assert.Empty(t, empty.Number)
	assert.Equal(t, model.TypePregao, empty.Type)
	assert.Equal(t, model.StatusAberta, empty.Status)
	assert.Nil(t, empty.EstimatedValue)
}

func TestFallbackIDsDoNotCollideWithUpstreamSequence(t *testing.T) {
	result := normalize.PNCP(raw(t,
		`{"numeroLicitacao": "a"}`,
		`{"sequencialLicitacao": 1}`,
		`{"numeroLicitacao": "b"}`,
		`{"sequencialLicitacao": 3}`,
	), now)

	require.Len(t, result.Records, 4)
	seen := make(map[int64]struct{}, len(result.Records))
	for _, rec := range result.Records {
		_, dup := seen[rec.ID]
		assert.False(t, dup, "duplicate id %d", rec.ID)
		seen[rec.ID] = struct{}{}
	}
	assert.Equal(t, int64(-1), result.Records[0].ID)
	assert.Equal(t, int64(1), result.Records[1].ID)
	assert.Equal(t, int64(-3), result.Records[2].ID)
}

func TestPNCPSkipsMalformedItems(t *testing.T) {
	result := normalize.PNCP(raw(t,
		`{"sequencialLicitacao": 1, "dataAbertura": "ontem"}`,
		`"just a string"`,
		`{"sequencialLicitacao": 3, "valorEstimado": -10}`,
		`{"sequencialLicitacao": 4, "valorEstimado": "1.234,56", "ufOrgao": "ZZ"}`,
		`{"sequencialLicitacao": {"nested": true}}`,
	), now)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, int64(4), rec.ID)
	require.NotNil(t, rec.EstimatedValue)
	assert.InDelta(t, 1234.56, *rec.EstimatedValue, 0.001)
	assert.Equal(t, model.Region(""), rec.Region)

	require.Len(t, result.Skipped, 4)
	indexes := make([]int, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		indexes = append(indexes, s.Index)
		assert.Error(t, s.Unwrap())
	}
	assert.Equal(t, []int{0, 1, 2, 4}, indexes)
}

func TestTransparenciaNestedFields(t *testing.T) {
	result := normalize.Transparencia(raw(t, `{
		"id": 9001,
		"licitacao": {"numero": "000123/2024", "objeto": "Aquisição de veículos"},
		"modalidadeLicitacao": {"descricao": "Pregão"},
		"situacaoCompra": {"descricao": "Encerrada"},
		"unidadeGestora": {"orgaoVinculado": {"nome": "Ministério da Saúde"}},
		"valor": "R$ 2.500.000,00",
		"dataAbertura": "15/08/2024",
		"dataResultadoCompra": "20/09/2024",
		"municipio": {"nomeIBGE": "Recife", "uf": {"sigla": "PE"}}
	}`), now)

	require.Empty(t, result.Skipped)
	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, int64(9001), rec.ID)
	assert.Equal(t, "000123/2024", rec.Number)
	assert.Equal(t, "Aquisição de veículos", rec.Subject)
	assert.Equal(t, "Ministério da Saúde", rec.IssuingBody)
	assert.Equal(t, model.TypePregao, rec.Type)
	assert.Equal(t, model.StatusEncerrada, rec.Status)
	require.NotNil(t, rec.EstimatedValue)
	assert.InDelta(t, 2500000.0, *rec.EstimatedValue, 0.001)
	assert.Equal(t, "2024-08-15", rec.OpeningDate.String())
	require.NotNil(t, rec.ClosingDate)
	assert.Equal(t, "2024-09-20", rec.ClosingDate.String())
	assert.Equal(t, model.Region("PE"), rec.Region)
	assert.Equal(t, "Recife", rec.City)
	assert.Nil(t, rec.NoticeLink)
}

func TestEmptyBatch(t *testing.T) {
	result := normalize.Transparencia(nil, now)
	assert.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Skipped)
}
