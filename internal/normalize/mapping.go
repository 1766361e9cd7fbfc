package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nurpe/licitacoes-api/internal/model"
)

const (
	DefaultType   = model.TypePregao
	DefaultStatus = model.StatusAberta
)

var typeByCode = map[string]model.Type{
	"PREGAO":        model.TypePregao,
	"CONCORRENCIA":  model.TypeConcorrencia,
	"TOMADA_PRECOS": model.TypeTomadaPrecos,
	"CONVITE":       model.TypeConvite,
	"RDC":           model.TypeRDC,
	"CONCURSO":      model.TypeConcurso,
	"LEILAO":        model.TypeLeilao,
}

var statusByCode = map[string]model.Status{
	"ABERTA":       model.StatusAberta,
	"EM_ANDAMENTO": model.StatusEmAndamento,
	"ENCERRADA":    model.StatusEncerrada,
	"SUSPENSA":     model.StatusSuspensa,
	"CANCELADA":    model.StatusCancelada,
}

var connectives = map[string]struct{}{
	"DE": {}, "DA": {}, "DO": {}, "DAS": {}, "DOS": {},
}

func MapType(code string) model.Type {
	if t, ok := typeByCode[codeKey(code)]; ok {
		return t
	}
	return DefaultType
}

func MapStatus(code string) model.Status {
	if s, ok := statusByCode[codeKey(code)]; ok {
		return s
	}
	return DefaultStatus
}

// codeKey folds "Tomada de Preços", "tomada_precos" and "TOMADA-PRECOS" into TOMADA_PRECOS.
func codeKey(raw string) string {
	// transform chains keep state, so one is built per call.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(strip, raw)
	if err != nil {
		folded = raw
	}

	fields := strings.FieldsFunc(strings.ToUpper(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := connectives[f]; skip {
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, "_")
}
