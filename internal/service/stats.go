package service

import (
	"sort"

	"github.com/nurpe/licitacoes-api/internal/model"
)

func ComputeStatistics(records []model.BiddingRecord) model.Statistics {
	stats := model.Statistics{
		Total:    len(records),
		ByType:   make(map[model.Type]int),
		ByStatus: make(map[model.Status]int),
		ByRegion: make(map[model.Region]int),
	}
	for _, rec := range records {
		stats.TotalEstimatedValue += rec.Value(0)
		stats.ByType[rec.Type]++
		stats.ByStatus[rec.Status]++
		stats.ByRegion[rec.Region]++
	}
	return stats
}

// Cities lists distinct cities, optionally restricted to one region, sorted.
func Cities(records []model.BiddingRecord, region *model.Region) []string {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, rec := range records {
		if region != nil && rec.Region != *region {
			continue
		}
		if _, ok := seen[rec.City]; ok {
			continue
		}
		seen[rec.City] = struct{}{}
		cities = append(cities, rec.City)
	}
	sort.Strings(cities)
	return cities
}
