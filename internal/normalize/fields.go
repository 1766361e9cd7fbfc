package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nurpe/licitacoes-api/internal/model"
)

var errNotObject = errors.New("item is not a JSON object")

type item map[string]any

func decodeItem(raw json.RawMessage) (item, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// lookup resolves a dotted path through nested objects. JSON null counts as absent.
func (it item) lookup(path string) (any, bool) {
	var current any = map[string]any(it)
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// extractor reads fields from one item and keeps the first error it meets,
// so a mapper can read every field and check the error once.
type extractor struct {
	it  item
	err error
}

func (x *extractor) fail(path string, err error) {
	if x.err == nil {
		x.err = fmt.Errorf("%s: %w", path, err)
	}
}

func (x *extractor) str(path string) string {
	value, ok := x.it.lookup(path)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		x.fail(path, fmt.Errorf("expected scalar, got %T", value))
		return ""
	}
}

func (x *extractor) optStr(path string) *string {
	s := x.str(path)
	if s == "" {
		return nil
	}
	return &s
}

func (x *extractor) integer(path string) int64 {
	value, ok := x.it.lookup(path)
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			x.fail(path, err)
		}
		return n
	case string:
		if strings.TrimSpace(v) == "" {
			return 0
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			x.fail(path, err)
		}
		return n
	default:
		x.fail(path, fmt.Errorf("expected integer, got %T", value))
		return 0
	}
}

// amount returns nil when the value is absent, keeping "unknown" apart from zero.
func (x *extractor) amount(path string) *float64 {
	value, ok := x.it.lookup(path)
	if !ok {
		return nil
	}

	var (
		parsed float64
		err    error
	)
	switch v := value.(type) {
	case json.Number:
		parsed, err = v.Float64()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		parsed, err = parseAmount(s)
	default:
		err = fmt.Errorf("expected number, got %T", value)
	}
	if err != nil {
		x.fail(path, err)
		return nil
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		x.fail(path, fmt.Errorf("invalid amount %v", parsed))
		return nil
	}
	if parsed < 0 {
		x.fail(path, fmt.Errorf("negative amount %v", parsed))
		return nil
	}
	return &parsed
}

func (x *extractor) date(path string) model.Date {
	s := x.str(path)
	if s == "" {
		return model.Date{}
	}
	parsed, err := model.ParseDate(s)
	if err != nil {
		x.fail(path, err)
		return model.Date{}
	}
	return parsed
}

func (x *extractor) optDate(path string) *model.Date {
	d := x.date(path)
	if d.IsZero() {
		return nil
	}
	return &d
}

// parseAmount accepts both "1234.56" and the Brazilian "1.234,56".
func parseAmount(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func region(raw string) model.Region {
	r, ok := model.ParseRegion(raw)
	if !ok {
		return ""
	}
	return r
}
