package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/nurpe/licitacoes-api/internal/model"
)

const SourcePNCP = "pncp"

type PNCPSearchParams struct {
	CNPJ     string
	From     model.Date
	To       model.Date
	Modality string
	Page     int
	PageSize int
}

type PNCPPage struct {
	Data          []json.RawMessage `json:"data"`
	TotalElements int               `json:"totalElements"`
}

// PNCPClient talks to Portal Nacional de Contratações Públicas.
type PNCPClient struct {
	client  *Client
	baseURL string
}

func NewPNCPClient(client *Client, baseURL string) *PNCPClient {
	return &PNCPClient{client: client, baseURL: baseURL}
}

func (p *PNCPClient) Search(ctx context.Context, params PNCPSearchParams) (*PNCPPage, error) {
	query := url.Values{}
	query.Set("pagina", strconv.Itoa(params.Page))
	query.Set("tamanhoPagina", strconv.Itoa(params.PageSize))
	if params.CNPJ != "" {
		query.Set("cnpjOrgao", params.CNPJ)
	}
	if !params.From.IsZero() {
		query.Set("dataInicial", params.From.String())
	}
	if !params.To.IsZero() {
		query.Set("dataFinal", params.To.String())
	}
	if params.Modality != "" {
		query.Set("modalidadeContratacao", params.Modality)
	}

	endpoint := p.baseURL + "/licitacoes"
	if params.CNPJ != "" {
		endpoint = p.baseURL + "/orgaos/" + url.PathEscape(params.CNPJ) + "/licitacoes"
	}

	var page PNCPPage
	if err := p.client.getJSON(ctx, SourcePNCP, endpoint, query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Organs returns the PNCP organ listing as-is.
func (p *PNCPClient) Organs(ctx context.Context, page, pageSize int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("pagina", strconv.Itoa(page))
	query.Set("tamanhoPagina", strconv.Itoa(pageSize))

	var body json.RawMessage
	if err := p.client.getJSON(ctx, SourcePNCP, p.baseURL+"/orgaos", query, nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}
