// Package normalize maps upstream procurement payloads into canonical bidding records.
//
// Missing fields fall back to per-field defaults. An item that cannot be mapped at all
// (not an object, unparseable date or amount) is skipped and reported in Result.Skipped;
// the rest of the batch is still returned.
package normalize

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nurpe/licitacoes-api/internal/model"
)

type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

type Result struct {
	Records []model.BiddingRecord
	Skipped []ItemError
}

type mapper func(x *extractor, index int, now time.Time) model.BiddingRecord

func fold(items []json.RawMessage, now time.Time, m mapper) Result {
	result := Result{Records: make([]model.BiddingRecord, 0, len(items))}
	for i, raw := range items {
		it, err := decodeItem(raw)
		if err != nil {
			result.Skipped = append(result.Skipped, ItemError{Index: i, Err: err})
			continue
		}

		x := &extractor{it: it}
		record := m(x, i, now)
		if x.err != nil {
			result.Skipped = append(result.Skipped, ItemError{Index: i, Err: x.err})
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result
}

// fallbackID keeps id and number from both being empty: items without an
// upstream sequence number get their negated 1-based payload position, which
// cannot collide with a positive upstream sequence in the same batch.
func fallbackID(id int64, index int) int64 {
	if id != 0 {
		return id
	}
	return -int64(index + 1)
}

// PNCP normalizes the "data" array of a PNCP licitações page.
func PNCP(items []json.RawMessage, now time.Time) Result {
	return fold(items, now, func(x *extractor, index int, now time.Time) model.BiddingRecord {
		modality := x.str("modalidadeContratacao")
		return model.BiddingRecord{
			ID:                fallbackID(x.integer("sequencialLicitacao"), index),
			Number:            x.str("numeroLicitacao"),
			Type:              MapType(modality),
			Subject:           x.str("objetoLicitacao"),
			IssuingBody:       x.str("nomeOrgao"),
			Status:            MapStatus(x.str("situacaoLicitacao")),
			EstimatedValue:    x.amount("valorEstimado"),
			OpeningDate:       x.date("dataAbertura"),
			ClosingDate:       x.optDate("dataEncerramento"),
			Region:            region(x.str("ufOrgao")),
			City:              x.str("cidadeOrgao"),
			ParticipationMode: optional(modality),
			NoticeLink:        x.optStr("linkEdital"),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	})
}

// Transparencia normalizes the array returned by Portal da Transparência /licitacoes.
func Transparencia(items []json.RawMessage, now time.Time) Result {
	return fold(items, now, func(x *extractor, index int, now time.Time) model.BiddingRecord {
		modality := x.str("modalidadeLicitacao.descricao")
		return model.BiddingRecord{
			ID:                fallbackID(x.integer("id"), index),
			Number:            x.str("licitacao.numero"),
			Type:              MapType(modality),
			Subject:           x.str("licitacao.objeto"),
			IssuingBody:       x.str("unidadeGestora.orgaoVinculado.nome"),
			Status:            MapStatus(x.str("situacaoCompra.descricao")),
			EstimatedValue:    x.amount("valor"),
			OpeningDate:       x.date("dataAbertura"),
			ClosingDate:       x.optDate("dataResultadoCompra"),
			Region:            region(x.str("municipio.uf.sigla")),
			City:              x.str("municipio.nomeIBGE"),
			ParticipationMode: optional(modality),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
