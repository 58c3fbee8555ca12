package board

import (
	"strings"

	"issueboard/internal/model"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// Filter combines an exact status match with a case-insensitive search over
// summary and description. Both must hold.
type Filter struct {
	Status string `json:"status"`
	Search string `json:"q"`
}

func (f Filter) allStatuses() bool {
	return f.Status == "" || f.Status == StatusAll
}

func (f Filter) Match(is model.Issue) bool {
	if !f.allStatuses() && string(is.Status) != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(is.Summary), q) ||
		strings.Contains(strings.ToLower(is.Description), q)
}

// Apply returns the matching issues in source order. issues is not modified.
func Apply(issues []model.Issue, f Filter) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	for _, is := range issues {
		if f.Match(is) {
			out = append(out, is)
		}
	}
	return out
}

type Column struct {
	Status model.Status  `json:"status"`
	Label  string        `json:"label"`
	Issues []model.Issue `json:"issues"`
}

// GroupByStatus partitions issues into the four columns in their fixed order,
// keeping source order inside each column. Issues with a status outside the set
// are returned separately.
func GroupByStatus(issues []model.Issue) (columns []Column, other []model.Issue) {
	columns = make([]Column, len(model.Statuses))
	index := make(map[model.Status]int, len(model.Statuses))
	for i, s := range model.Statuses {
		columns[i] = Column{Status: s, Label: s.Label(), Issues: []model.Issue{}}
		index[s] = i
	}
	for _, is := range issues {
		i, ok := index[is.Status]
		if !ok {
			other = append(other, is)
			continue
		}
		columns[i].Issues = append(columns[i].Issues, is)
	}
	return columns, other
}

// View is the filtered, grouped board with per-column counts.
type View struct {
	Filter  Filter               `json:"filter"`
	Columns []Column             `json:"columns"`
	Other   []model.Issue        `json:"other,omitempty"`
	Counts  map[model.Status]int `json:"counts"`
	Matched int                  `json:"matched"`
	Total   int                  `json:"total"`
}

func NewView(issues []model.Issue, f Filter) View {
	matched := Apply(issues, f)
	columns, other := GroupByStatus(matched)
	counts := make(map[model.Status]int, len(columns))
	for _, col := range columns {
		counts[col.Status] = len(col.Issues)
	}
	return View{
		Filter:  f,
		Columns: columns,
		Other:   other,
		Counts:  counts,
		Matched: len(matched),
		Total:   len(issues),
	}
}
