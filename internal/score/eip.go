package score

import (
	"strconv"
	"strings"

	"callsearch/internal/model"
)

// EIP field weights. A field counts once when it contains any query word, so
// number and title matches dominate.
var EIPWeights = []struct {
	Field  string
	Weight int
}{
	{"id", 100},
	{"title", 50},
	{"laymanDescription", 30},
	{"description", 20},
	{"author", 15},
	{"benefits", 10},
	{"northStars", 10},
}

// EIP scores an EIP record against q.
func EIP(q Query, e model.EIP) Match {
	if q.Empty() {
		return Match{}
	}

	values := map[string]string{
		"title":             e.Title,
		"laymanDescription": e.LaymanDescription,
		"description":       e.Description,
		"author":            e.Author,
		"benefits":          strings.Join(e.Benefits, " "),
		"northStars":        strings.Join(e.NorthStars, " "),
	}

	var m Match
	for _, fw := range EIPWeights {
		var hit bool
		if fw.Field == "id" {
			hit = idMatches(q, e.ID)
		} else {
			hit = anyWordIn(q.Words, strings.ToLower(values[fw.Field]))
		}
		if hit {
			m.Score += fw.Weight
			m.Fields = append(m.Fields, fw.Field)
		}
	}

	if strings.Contains(strings.ToLower(e.Title), q.Lower) {
		m.Exact = true
	}
	return m
}

// idMatches compares query words against the EIP number, accepting "7702",
// "eip-7702" and "eip7702". The bare word "eip" never matches an id.
func idMatches(q Query, id int) bool {
	if id <= 0 {
		return false
	}
	num := strconv.Itoa(id)
	for _, w := range q.Words {
		w = strings.TrimPrefix(w, "eip")
		w = strings.TrimPrefix(w, "-")
		w = strings.TrimPrefix(w, "#")
		if w != "" && strings.Contains(num, w) {
			return true
		}
	}
	return false
}

func anyWordIn(words []string, s string) bool {
	if s == "" {
		return false
	}
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
