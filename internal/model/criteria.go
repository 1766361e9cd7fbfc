package model

import (
	"fmt"
	"math"
)

// Criteria holds the optional, conjunctive filters applied to a record collection.
type Criteria struct {
	Types       []Type   `json:"tipos,omitempty"`
	Statuses    []Status `json:"status,omitempty"`
	Regions     []Region `json:"ufs,omitempty"`
	Cities      []string `json:"cidades,omitempty"`
	MinValue    *float64 `json:"valor_min,omitempty"`
	MaxValue    *float64 `json:"valor_max,omitempty"`
	OpeningFrom *Date    `json:"data_abertura_inicio,omitempty"`
	OpeningTo   *Date    `json:"data_abertura_fim,omitempty"`
	Text        string   `json:"texto_busca,omitempty"`
}

func (c Criteria) Validate() error {
	for _, t := range c.Types {
		if _, ok := ParseType(string(t)); !ok {
			return fmt.Errorf("invalid tipo %q", t)
		}
	}
	for _, s := range c.Statuses {
		if _, ok := ParseStatus(string(s)); !ok {
			return fmt.Errorf("invalid status %q", s)
		}
	}
	for _, r := range c.Regions {
		if _, ok := ParseRegion(string(r)); !ok {
			return fmt.Errorf("invalid uf %q", r)
		}
	}
	if c.MinValue != nil && !finite(*c.MinValue) {
		return fmt.Errorf("valor_min must be a finite number")
	}
	if c.MaxValue != nil && !finite(*c.MaxValue) {
		return fmt.Errorf("valor_max must be a finite number")
	}
	if c.MinValue != nil && c.MaxValue != nil && *c.MinValue > *c.MaxValue {
		return fmt.Errorf("valor_min must be less than or equal to valor_max")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalized returns a copy with enum values in their canonical case.
func (c Criteria) Normalized() Criteria {
	out := c
	if len(c.Types) > 0 {
		out.Types = make([]Type, 0, len(c.Types))
		for _, t := range c.Types {
			if parsed, ok := ParseType(string(t)); ok {
				out.Types = append(out.Types, parsed)
			}
		}
	}
	if len(c.Statuses) > 0 {
		out.Statuses = make([]Status, 0, len(c.Statuses))
		for _, s := range c.Statuses {
			if parsed, ok := ParseStatus(string(s)); ok {
				out.Statuses = append(out.Statuses, parsed)
			}
		}
	}
	if len(c.Regions) > 0 {
		out.Regions = make([]Region, 0, len(c.Regions))
		for _, r := range c.Regions {
			if parsed, ok := ParseRegion(string(r)); ok {
				out.Regions = append(out.Regions, parsed)
			}
		}
	}
	return out
}
