package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nurpe/licitacoes-api/internal/model"
)

const SourceTransparencia = "transparencia"

type TransparenciaSearchParams struct {
	OrgCode string
	From    model.Date
	To      model.Date
	Page    int
}

// TransparenciaClient talks to Portal da Transparência do Governo Federal.
type TransparenciaClient struct {
	client  *Client
	baseURL string
	apiKey  string
}

func NewTransparenciaClient(client *Client, baseURL, apiKey string) *TransparenciaClient {
	return &TransparenciaClient{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (t *TransparenciaClient) Search(ctx context.Context, params TransparenciaSearchParams) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("pagina", strconv.Itoa(params.Page))
	if params.OrgCode != "" {
		query.Set("codigoOrgao", params.OrgCode)
	}
	if !params.From.IsZero() {
		query.Set("dataInicial", params.From.BR())
	}
	if !params.To.IsZero() {
		query.Set("dataFinal", params.To.BR())
	}

	headers := http.Header{}
	if t.apiKey != "" {
		headers.Set("chave-api-dados", t.apiKey)
	}

	var items []json.RawMessage
	if err := t.client.getJSON(ctx, SourceTransparencia, t.baseURL+"/licitacoes", query, headers, &items); err != nil {
		return nil, err
	}
	return items, nil
}
