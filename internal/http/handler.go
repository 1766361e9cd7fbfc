package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitacoes-api/internal/model"
	"github.com/nurpe/licitacoes-api/internal/service"
)

const (
	sourceNamePNCP          = "PNCP - Portal Nacional de Contratações Públicas"
	sourceNameTransparencia = "Portal da Transparência - Governo Federal"
	sourceNameConsolidated  = "Dados Consolidados"

	apiVersion = "1.0.0"
)

type Handler struct {
	licitacoes *service.LicitacaoService
	log        zerolog.Logger
}

func NewHandler(licitacoes *service.LicitacaoService, log zerolog.Logger) *Handler {
	return &Handler{licitacoes: licitacoes, log: log.With().Str("component", "handler").Logger()}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/", h.index)
	router.GET("/health", h.health)

	licitacoes := router.Group("/licitacoes")
	licitacoes.GET("", h.listLicitacoes)
	licitacoes.POST("/buscar", h.searchLicitacoes)
	licitacoes.GET("/export", h.exportLicitacoes)
	licitacoes.GET("/pncp", h.pncpLicitacoes)
	licitacoes.GET("/transparencia", h.transparenciaLicitacoes)
	licitacoes.GET("/consolidado", h.consolidatedLicitacoes)
	licitacoes.GET("/:id", h.getLicitacao)

	router.GET("/orgaos/pncp", h.pncpOrgans)
	router.GET("/tipos", h.listTypes)
	router.GET("/status", h.listStatuses)
	router.GET("/ufs", h.listRegions)
	router.GET("/cidades", h.listCities)
	router.GET("/estatisticas", h.statistics)
	router.GET("/estatisticas/pdf", h.statisticsPDF)
}

func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "API de Licitações - Bem-vindo!",
		"version": apiVersion,
		"endpoints": gin.H{
			"licitacoes_mock":          "/licitacoes",
			"licitacoes_busca":         "/licitacoes/buscar",
			"licitacoes_export":        "/licitacoes/export",
			"licitacoes_pncp":          "/licitacoes/pncp",
			"licitacoes_transparencia": "/licitacoes/transparencia",
			"licitacoes_consolidado":   "/licitacoes/consolidado",
			"orgaos_pncp":              "/orgaos/pncp",
			"tipos":                    "/tipos",
			"status":                   "/status",
			"ufs":                      "/ufs",
			"cidades":                  "/cidades",
			"estatisticas":             "/estatisticas",
			"estatisticas_pdf":         "/estatisticas/pdf",
			"metricas":                 "/metrics",
		},
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listLicitacoes(c *gin.Context) {
	input, err := parseSearchQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.licitacoes.Search(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse{
		Data:           result.Items,
		Total:          result.Total,
		Limit:          result.Limit,
		Offset:         result.Offset,
		HasNextPage:    result.HasNext,
		AppliedFilters: input.Criteria,
	})
}

func (h *Handler) searchLicitacoes(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.SearchInput{
		Criteria: req.Criteria,
		Limit:    service.DefaultLimit,
		SortBy:   req.SortBy,
		Desc:     req.Desc,
	}
	if req.Limit != nil {
		input.Limit = *req.Limit
	}
	if req.Offset != nil {
		input.Offset = *req.Offset
	}

	result, err := h.licitacoes.Search(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, searchResponse{
		Data:           result.Items,
		Total:          result.Total,
		AppliedFilters: req.Criteria,
	})
}

func (h *Handler) exportLicitacoes(c *gin.Context) {
	input, err := parseSearchQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.licitacoes.ExportXLSX(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) getLicitacao(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	rec, err := h.licitacoes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) pncpLicitacoes(c *gin.Context) {
	var q pncpQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.licitacoes.PNCP(c.Request.Context(), service.PNCPQuery{
		CNPJ:     strings.TrimSpace(q.CNPJ),
		From:     from,
		To:       to,
		Modality: strings.TrimSpace(q.Modality),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sourceResponse{
		Source:   sourceNamePNCP,
		Data:     result.Records,
		Total:    result.Total,
		Page:     q.Page,
		PageSize: q.PageSize,
		Skipped:  result.Skipped,
		Warning:  result.Warning,
		SearchParams: gin.H{
			"cnpj_orgao":  nullable(q.CNPJ),
			"data_inicio": nullable(from.String()),
			"data_fim":    nullable(to.String()),
			"modalidade":  nullable(q.Modality),
		},
	})
}

func (h *Handler) transparenciaLicitacoes(c *gin.Context) {
	var q transparenciaQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.licitacoes.Transparencia(c.Request.Context(), service.TransparenciaQuery{
		OrgCode: strings.TrimSpace(q.OrgCode),
		From:    from,
		To:      to,
		Page:    q.Page,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sourceResponse{
		Source:  sourceNameTransparencia,
		Data:    result.Records,
		Total:   result.Total,
		Page:    q.Page,
		Skipped: result.Skipped,
		Warning: result.Warning,
		SearchParams: gin.H{
			"codigo_orgao": nullable(q.OrgCode),
			"data_inicio":  nullable(from.BR()),
			"data_fim":     nullable(to.BR()),
		},
	})
}

func (h *Handler) consolidatedLicitacoes(c *gin.Context) {
	var q consolidatedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.licitacoes.Consolidate(c.Request.Context(), service.ConsolidatedQuery{
		From:                 from,
		To:                   to,
		CNPJ:                 strings.TrimSpace(q.CNPJ),
		Modality:             strings.TrimSpace(q.Modality),
		OrgCode:              strings.TrimSpace(q.OrgCode),
		IncludeMock:          q.IncludeMock,
		IncludePNCP:          q.IncludePNCP,
		IncludeTransparencia: q.IncludeTransparencia,
		Page:                 q.Page,
		PageSize:             q.PageSize,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	sources := make(map[string]sourceSummary, len(result.Sources))
	for _, src := range result.Sources {
		sources[src.Source] = sourceSummary{
			Total:       src.Total,
			Retrieved:   src.Retrieved(),
			Skipped:     src.Skipped,
			Unavailable: src.Unavailable,
		}
	}

	c.JSON(http.StatusOK, consolidatedResponse{
		Source:  sourceNameConsolidated,
		Sources: sources,
		Data:    result.Records,
		Total:   len(result.Records),
		Config: gin.H{
			"incluir_mock":          q.IncludeMock,
			"incluir_pncp":          q.IncludePNCP,
			"incluir_transparencia": q.IncludeTransparencia,
			"pagina":                q.Page,
			"tamanho_pagina":        q.PageSize,
		},
	})
}

func (h *Handler) pncpOrgans(c *gin.Context) {
	var q organsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, ok, err := h.licitacoes.PNCPOrgans(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !ok {
		c.Header("Warning", `199 - "PNCP indisponível"`)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) listTypes(c *gin.Context) {
	c.JSON(http.StatusOK, model.Types)
}

func (h *Handler) listStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, model.Statuses)
}

func (h *Handler) listRegions(c *gin.Context) {
	c.JSON(http.StatusOK, model.Regions)
}

func (h *Handler) listCities(c *gin.Context) {
	var region *model.Region
	if raw := strings.TrimSpace(c.Query("uf")); raw != "" {
		parsed, ok := model.ParseRegion(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uf"})
			return
		}
		region = &parsed
	}
	c.JSON(http.StatusOK, gin.H{"cidades": h.licitacoes.Cities(c.Request.Context(), region)})
}

func (h *Handler) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.licitacoes.Statistics(c.Request.Context()))
}

func (h *Handler) statisticsPDF(c *gin.Context) {
	result, err := h.licitacoes.StatisticsPDF(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "erro interno: " + err.Error()})
	}
}
