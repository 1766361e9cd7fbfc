package model

import (
	"strings"
	"time"
)

type Type string

const (
	TypeConvite         Type = "convite"
	TypeTomadaPrecos    Type = "tomada_precos"
	TypeConcorrencia    Type = "concorrencia"
	TypePregao          Type = "pregao"
	TypeConcurso        Type = "concurso"
	TypeLeilao          Type = "leilao"
	TypeRDC             Type = "rdc"
	TypeConsultaPublica Type = "consulta_publica"
)

var Types = []Type{
	TypeConvite,
	TypeTomadaPrecos,
	TypeConcorrencia,
	TypePregao,
	TypeConcurso,
	TypeLeilao,
	TypeRDC,
	TypeConsultaPublica,
}

type Status string

const (
	StatusAberta      Status = "aberta"
	StatusEmAndamento Status = "em_andamento"
	StatusEncerrada   Status = "encerrada"
	StatusSuspensa    Status = "suspensa"
	StatusCancelada   Status = "cancelada"
)

var Statuses = []Status{
	StatusAberta,
	StatusEmAndamento,
	StatusEncerrada,
	StatusSuspensa,
	StatusCancelada,
}

// Region is a Brazilian federative unit code (UF).
type Region string

var Regions = []Region{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO",
	"MA", "MT", "MS", "MG", "PA", "PB", "PR", "PE", "PI",
	"RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

func ParseType(raw string) (Type, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, t := range Types {
		if string(t) == raw {
			return t, true
		}
	}
	return "", false
}

func ParseStatus(raw string) (Status, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, s := range Statuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

func ParseRegion(raw string) (Region, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	for _, r := range Regions {
		if string(r) == raw {
			return r, true
		}
	}
	return "", false
}

type BiddingRecord struct {
	ID                int64     `json:"id"`
	Number            string    `json:"numero"`
	Type              Type      `json:"tipo"`
	Subject           string    `json:"objeto"`
	IssuingBody       string    `json:"orgao"`
	Status            Status    `json:"status"`
	EstimatedValue    *float64  `json:"valor_estimado"`
	OpeningDate       Date      `json:"data_abertura"`
	ClosingDate       *Date     `json:"data_encerramento"`
	Region            Region    `json:"uf"`
	City              string    `json:"cidade"`
	ParticipationMode *string   `json:"modalidade_participacao"`
	NoticeLink        *string   `json:"link_edital"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Value returns the estimated value, or fallback when it is unknown.
func (r BiddingRecord) Value(fallback float64) float64 {
	if r.EstimatedValue == nil {
		return fallback
	}
	return *r.EstimatedValue
}

// DateWarning reports a closing date earlier than the opening date.
func (r BiddingRecord) DateWarning() bool {
	if r.ClosingDate == nil || r.ClosingDate.IsZero() || r.OpeningDate.IsZero() {
		return false
	}
	return r.ClosingDate.Before(r.OpeningDate.Time)
}
