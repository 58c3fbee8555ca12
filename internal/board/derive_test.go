package board_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"issueboard/internal/board"
	"issueboard/internal/model"
)

var words = []string{"login", "bug", "Login Bug", "dashboard", "LOGIN BUG fix", "export", "", "api"}

func randomIssues(r *rand.Rand, n int) []model.Issue {
	out := make([]model.Issue, n)
	for i := range out {
		out[i] = model.Issue{
			ID:          uuid.New(),
			Summary:     words[r.Intn(len(words))] + " " + words[r.Intn(len(words))],
			Description: words[r.Intn(len(words))],
			Status:      model.Statuses[r.Intn(len(model.Statuses))],
		}
	}
	return out
}

func TestGroupByStatus_EveryIssueExactlyOnce(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		issues := randomIssues(r, r.Intn(30))
		f := board.Filter{Status: []string{"all", "to_do", "done", "in_review"}[r.Intn(4)], Search: words[r.Intn(len(words))]}

		filtered := board.Apply(issues, f)
		columns, other := board.GroupByStatus(filtered)

		assert.Empty(t, other)
		seen := map[uuid.UUID]int{}
		total := 0
		for _, col := range columns {
			for _, is := range col.Issues {
				assert.Equal(t, col.Status, is.Status)
				seen[is.ID]++
				total++
			}
		}
		assert.Equal(t, len(filtered), total)
		for _, is := range filtered {
			assert.Equal(t, 1, seen[is.ID])
		}
	}
}

func TestGroupByStatus_PreservesSourceOrder(t *testing.T) {
	issues := []model.Issue{
		{Summary: "a", Status: model.StatusDone},
		{Summary: "b", Status: model.StatusToDo},
		{Summary: "c", Status: model.StatusDone},
		{Summary: "d", Status: model.StatusToDo},
	}

	columns, _ := board.GroupByStatus(issues)

	names := func(c board.Column) []string {
		var out []string
		for _, is := range c.Issues {
			out = append(out, is.Summary)
		}
		return out
	}
	assert.Equal(t, model.StatusToDo, columns[0].Status)
	assert.Equal(t, "To Do", columns[0].Label)
	assert.Equal(t, []string{"b", "d"}, names(columns[0]))
	assert.Equal(t, "Completed", columns[3].Label)
	assert.Equal(t, []string{"a", "c"}, names(columns[3]))
}

func TestGroupByStatus_UnknownStatusSetAside(t *testing.T) {
	issues := []model.Issue{{Summary: "x", Status: "archived"}, {Summary: "y", Status: model.StatusToDo}}

	columns, other := board.GroupByStatus(issues)

	assert.Len(t, other, 1)
	assert.Len(t, columns[0].Issues, 1)
	assert.Empty(t, board.Apply(issues, board.Filter{Status: "done"}))
}

func TestFilter_Conjunction(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	issues := randomIssues(r, 300)
	for _, status := range []string{"all", "to_do", "in_progress", "in_review", "done"} {
		for _, q := range words {
			f := board.Filter{Status: status, Search: q}
			got := board.Apply(issues, f)

			var want []model.Issue
			for _, is := range issues {
				statusOK := status == "all" || string(is.Status) == status
				lq := strings.ToLower(q)
				textOK := q == "" || strings.Contains(strings.ToLower(is.Summary), lq) ||
					strings.Contains(strings.ToLower(is.Description), lq)
				if statusOK && textOK {
					want = append(want, is)
				}
			}
			if want == nil {
				want = []model.Issue{}
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("filter %+v (-want +got):\n%s", f, diff)
			}
		}
	}
}

func TestFilter_LoginBugInReview(t *testing.T) {
	issues := []model.Issue{
		{Summary: "Login Bug on Safari", Status: model.StatusInReview},
		{Summary: "Login bug on Chrome", Status: model.StatusToDo},
		{Summary: "Dashboard", Description: "regression: LOGIN BUG after deploy", Status: model.StatusInReview},
		{Summary: "Dashboard", Description: "layout", Status: model.StatusInReview},
	}

	got := board.Apply(issues, board.Filter{Status: "in_review", Search: "login bug"})

	assert.Equal(t, []model.Issue{issues[0], issues[2]}, got)
}

func TestFilter_SearchIgnoresSurroundingSpace(t *testing.T) {
	issues := []model.Issue{
		{Summary: "Login bug on mobile", Status: model.StatusInReview},
		{Summary: "Dashboard", Status: model.StatusInReview},
	}

	assert.Equal(t, []model.Issue{issues[0]},
		board.Apply(issues, board.Filter{Status: "in_review", Search: " login bug "}))
	assert.Equal(t, issues, board.Apply(issues, board.Filter{Search: "   "}))
	assert.Equal(t, issues, board.Apply(issues, board.Filter{Status: "all", Search: "\t\n"}))
}

func TestApply_DoesNotMutateSource(t *testing.T) {
	issues := []model.Issue{{Summary: "a", Status: model.StatusDone}, {Summary: "b", Status: model.StatusToDo}}
	before := append([]model.Issue(nil), issues...)

	_ = board.NewView(issues, board.Filter{Status: "to_do"})

	assert.Equal(t, before, issues)
}

func TestNewView_Counts(t *testing.T) {
	issues := []model.Issue{
		{Summary: "a", Status: model.StatusDone},
		{Summary: "b", Status: model.StatusToDo},
		{Summary: "c", Status: model.StatusToDo},
	}

	v := board.NewView(issues, board.Filter{Search: "b"})

	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, v.Matched)
	assert.Equal(t, map[model.Status]int{
		model.StatusToDo: 1, model.StatusInProgress: 0, model.StatusInReview: 0, model.StatusDone: 0,
	}, v.Counts)
}
