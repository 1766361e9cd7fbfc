package model

import "time"

type Statistics struct {
	Total               int            `json:"total_licitacoes"`
	TotalEstimatedValue float64        `json:"valor_total_estimado"`
	ByType              map[Type]int   `json:"distribuicao_por_tipo"`
	ByStatus            map[Status]int `json:"distribuicao_por_status"`
	ByRegion            map[Region]int `json:"distribuicao_por_uf"`
}

// ListingReport is the input of the spreadsheet export.
type ListingReport struct {
	GeneratedAt time.Time
	Criteria    Criteria
	Total       int
	Records     []BiddingRecord
}

// StatisticsReport is the input of the PDF statistics export.
type StatisticsReport struct {
	GeneratedAt time.Time
	Statistics  Statistics
	Records     []BiddingRecord
}
