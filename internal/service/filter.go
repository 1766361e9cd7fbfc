package service

import (
	"math"
	"strings"

	"github.com/nurpe/licitacoes-api/internal/model"
)

type predicate func(model.BiddingRecord) bool

// Filter returns the records matching every criterion present in c, in input
// order, and their count. The input slice is not modified.
func Filter(records []model.BiddingRecord, c model.Criteria) ([]model.BiddingRecord, int) {
	predicates := buildPredicates(c)

	matched := make([]model.BiddingRecord, 0, len(records))
	for _, rec := range records {
		if matchesAll(rec, predicates) {
			matched = append(matched, rec)
		}
	}
	return matched, len(matched)
}

func matchesAll(rec model.BiddingRecord, predicates []predicate) bool {
	for _, p := range predicates {
		if !p(rec) {
			return false
		}
	}
	return true
}

// buildPredicates keeps the fixed criterion order: type, status, region, city,
// min value, max value, opening from, opening to, free text.
func buildPredicates(c model.Criteria) []predicate {
	var predicates []predicate

	if len(c.Types) > 0 {
		set := toSet(c.Types)
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			_, ok := set[r.Type]
			return ok
		})
	}
	if len(c.Statuses) > 0 {
		set := toSet(c.Statuses)
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			_, ok := set[r.Status]
			return ok
		})
	}
	if len(c.Regions) > 0 {
		set := toSet(c.Regions)
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			_, ok := set[r.Region]
			return ok
		})
	}
	if len(c.Cities) > 0 {
		set := make(map[string]struct{}, len(c.Cities))
		for _, city := range c.Cities {
			set[strings.ToLower(city)] = struct{}{}
		}
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			_, ok := set[strings.ToLower(r.City)]
			return ok
		})
	}
	if c.MinValue != nil {
		lower := *c.MinValue
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			return r.Value(0) >= lower
		})
	}
	if c.MaxValue != nil {
		upper := *c.MaxValue
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			return r.Value(math.Inf(1)) <= upper
		})
	}
	if c.OpeningFrom != nil && !c.OpeningFrom.IsZero() {
		from := c.OpeningFrom.Time
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			return !r.OpeningDate.Before(from)
		})
	}
	if c.OpeningTo != nil && !c.OpeningTo.IsZero() {
		to := c.OpeningTo.Time
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			return !r.OpeningDate.After(to)
		})
	}
	if text := strings.ToLower(strings.TrimSpace(c.Text)); text != "" {
		predicates = append(predicates, func(r model.BiddingRecord) bool {
			return strings.Contains(strings.ToLower(r.Subject), text) ||
				strings.Contains(strings.ToLower(r.IssuingBody), text) ||
				strings.Contains(strings.ToLower(r.Number), text)
		})
	}

	return predicates
}

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
