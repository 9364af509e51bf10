package search

import (
	"sort"

	"callsearch/internal/model"
	"callsearch/internal/score"
)

// MaxEIPResults caps the EIP search result list.
const MaxEIPResults = 50

// EIPResult is one matching EIP.
type EIPResult struct {
	EIP    model.EIP
	Score  int
	Fields []string
}

// SearchEIPs ranks eips against query by score, then by EIP number, and
// returns at most MaxEIPResults.
func SearchEIPs(eips []model.EIP, query string) []EIPResult {
	q := score.NewQuery(query)
	if q.Empty() {
		return nil
	}

	var results []EIPResult
	for _, e := range eips {
		m := score.EIP(q, e)
		if m.Score == 0 {
			continue
		}
		results = append(results, EIPResult{EIP: e, Score: m.Score, Fields: m.Fields})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].EIP.ID < results[j].EIP.ID
	})

	if len(results) > MaxEIPResults {
		results = results[:MaxEIPResults]
	}
	return results
}
