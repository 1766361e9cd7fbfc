package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/licitacoes-api/internal/model"
	"github.com/nurpe/licitacoes-api/internal/service"
)

type searchRequest struct {
	model.Criteria
	Limit  *int   `json:"limite"`
	Offset *int   `json:"offset"`
	SortBy string `json:"ordenar_por"`
	Desc   bool   `json:"ordem_desc"`
}

type pncpQuery struct {
	CNPJ     string `form:"cnpj_orgao"`
	From     string `form:"data_inicio"`
	To       string `form:"data_fim"`
	Modality string `form:"modalidade"`
	Page     int    `form:"pagina,default=1" binding:"min=1"`
	PageSize int    `form:"tamanho_pagina,default=100" binding:"min=1,max=500"`
}

type transparenciaQuery struct {
	OrgCode string `form:"codigo_orgao"`
	From    string `form:"data_inicio"`
	To      string `form:"data_fim"`
	Page    int    `form:"pagina,default=1" binding:"min=1"`
}

type consolidatedQuery struct {
	From     string `form:"data_inicio"`
	To       string `form:"data_fim"`
	CNPJ     string `form:"cnpj_orgao"`
	Modality string `form:"modalidade"`
	OrgCode  string `form:"codigo_orgao"`

	IncludeMock          bool `form:"incluir_mock,default=false"`
	IncludePNCP          bool `form:"incluir_pncp,default=true"`
	IncludeTransparencia bool `form:"incluir_transparencia,default=false"`

	Page     int `form:"pagina,default=1" binding:"min=1"`
	PageSize int `form:"tamanho_pagina,default=100" binding:"min=1,max=500"`
}

type organsQuery struct {
	Page     int `form:"pagina,default=1" binding:"min=1"`
	PageSize int `form:"tamanho_pagina,default=50" binding:"min=1,max=500"`
}

type listResponse struct {
	Data           []model.BiddingRecord `json:"dados"`
	Total          int                   `json:"total"`
	Limit          int                   `json:"limite"`
	Offset         int                   `json:"offset"`
	HasNextPage    bool                  `json:"tem_proxima_pagina"`
	AppliedFilters model.Criteria        `json:"filtros_aplicados"`
}

type searchResponse struct {
	Data           []model.BiddingRecord `json:"dados"`
	Total          int                   `json:"total"`
	AppliedFilters model.Criteria        `json:"filtros_aplicados"`
}

type sourceResponse struct {
	Source       string                `json:"fonte"`
	Data         []model.BiddingRecord `json:"dados"`
	Total        int                   `json:"total"`
	Page         int                   `json:"pagina"`
	PageSize     int                   `json:"tamanho_pagina,omitempty"`
	Skipped      int                   `json:"descartados"`
	Warning      string                `json:"aviso,omitempty"`
	SearchParams gin.H                 `json:"parametros_busca"`
}

type sourceSummary struct {
	Total       int  `json:"total"`
	Retrieved   int  `json:"recuperados"`
	Skipped     int  `json:"descartados"`
	Unavailable bool `json:"indisponivel"`
}

type consolidatedResponse struct {
	Source  string                   `json:"fonte"`
	Sources map[string]sourceSummary `json:"fontes_consultadas"`
	Data    []model.BiddingRecord    `json:"dados"`
	Total   int                      `json:"total_consolidado"`
	Config  gin.H                    `json:"configuracao"`
}

// parseSearchQuery reads the listing filters from the query string. List
// parameters may be repeated or comma separated.
func parseSearchQuery(c *gin.Context) (service.SearchInput, error) {
	input := service.SearchInput{
		Limit:  service.DefaultLimit,
		SortBy: strings.TrimSpace(c.Query("ordenar_por")),
	}
	criteria := &input.Criteria

	for _, v := range queryList(c, "tipos") {
		criteria.Types = append(criteria.Types, model.Type(v))
	}
	for _, v := range queryList(c, "status") {
		criteria.Statuses = append(criteria.Statuses, model.Status(v))
	}
	for _, v := range queryList(c, "ufs") {
		criteria.Regions = append(criteria.Regions, model.Region(v))
	}
	criteria.Cities = queryList(c, "cidades")
	criteria.Text = strings.TrimSpace(c.Query("texto_busca"))

	var err error
	if criteria.MinValue, err = parseAmount(c.Query("valor_min"), "valor_min"); err != nil {
		return input, err
	}
	if criteria.MaxValue, err = parseAmount(c.Query("valor_max"), "valor_max"); err != nil {
		return input, err
	}
	if criteria.OpeningFrom, err = parseOptionalDate(c.Query("data_abertura_inicio"), "data_abertura_inicio"); err != nil {
		return input, err
	}
	if criteria.OpeningTo, err = parseOptionalDate(c.Query("data_abertura_fim"), "data_abertura_fim"); err != nil {
		return input, err
	}

	if raw := strings.TrimSpace(c.Query("limite")); raw != "" {
		if input.Limit, err = strconv.Atoi(raw); err != nil {
			return input, fmt.Errorf("invalid limite")
		}
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		if input.Offset, err = strconv.Atoi(raw); err != nil {
			return input, fmt.Errorf("invalid offset")
		}
	}
	if raw := strings.TrimSpace(c.Query("ordem_desc")); raw != "" {
		if input.Desc, err = strconv.ParseBool(raw); err != nil {
			return input, fmt.Errorf("invalid ordem_desc")
		}
	}
	return input, nil
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseAmount(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &v, nil
}

func parseOptionalDate(raw, name string) (*model.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &d, nil
}

// parseRange reads the upstream date window; either bound may be empty.
func parseRange(rawFrom, rawTo string) (model.Date, model.Date, error) {
	var from, to model.Date
	if d, err := parseOptionalDate(rawFrom, "data_inicio"); err != nil {
		return from, to, err
	} else if d != nil {
		from = *d
	}
	if d, err := parseOptionalDate(rawTo, "data_fim"); err != nil {
		return from, to, err
	} else if d != nil {
		to = *d
	}
	return from, to, nil
}

func nullable(value string) any {
	if value = strings.TrimSpace(value); value == "" {
		return nil
	}
	return value
}
