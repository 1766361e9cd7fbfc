package service

import (
	"cmp"
	"slices"

	"github.com/nurpe/licitacoes-api/internal/model"
)

const (
	SortByOpeningDate    = "data_abertura"
	SortByEstimatedValue = "valor_estimado"
	SortByNumber         = "numero"

	DefaultSortField = SortByOpeningDate
	DefaultLimit     = 100
	MaxLimit         = 1000
)

var comparators = map[string]func(a, b model.BiddingRecord) int{
	SortByOpeningDate: func(a, b model.BiddingRecord) int {
		return a.OpeningDate.Compare(b.OpeningDate.Time)
	},
	SortByEstimatedValue: func(a, b model.BiddingRecord) int {
		return cmp.Compare(a.Value(0), b.Value(0))
	},
	SortByNumber: func(a, b model.BiddingRecord) int {
		return cmp.Compare(a.Number, b.Number)
	},
}

// Sort returns a stably sorted copy. Fields outside the allow-list keep the input order.
func Sort(records []model.BiddingRecord, field string, desc bool) []model.BiddingRecord {
	out := slices.Clone(records)
	compare, ok := comparators[field]
	if !ok {
		return out
	}
	if desc {
		slices.SortStableFunc(out, func(a, b model.BiddingRecord) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// Paginate returns records[offset:offset+limit] with both bounds clamped.
func Paginate(records []model.BiddingRecord, offset, limit int) []model.BiddingRecord {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(records) {
		return []model.BiddingRecord{}
	}
	end := offset + limit
	if end > len(records) || end < offset {
		end = len(records)
	}
	return records[offset:end]
}

// HasNextPage reports offset+limit < total without overflowing on large offsets.
func HasNextPage(offset, limit, total int) bool {
	return offset < total && limit < total-offset
}
