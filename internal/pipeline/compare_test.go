package pipeline

import (
	"errors"
	"testing"

	"github.com/theirongolddev/xercost/internal/model"
)

func compareFixture() (UploadSnapshot, UploadSnapshot) {
	old := UploadSnapshot{
		Tasks: []model.Task{
			{ID: "T1", Name: "Piling", ProjectID: "P1"},
			{ID: "T2", Name: "Survey", ProjectID: "P1"},
			{ID: "T4", Name: "Fencing", ProjectID: "P1"},
		},
		Costs: map[string]model.CostValues{
			"T1": {Actual: 100, Target: 120, Remain: 20},
			"T2": {Actual: 10},
			"T4": {Actual: 5},
		},
	}
	cur := UploadSnapshot{
		Tasks: []model.Task{
			{ID: "T1", Name: "Piling", ProjectID: "P1"},
			{ID: "T3", Name: "Deck", ProjectID: "P1"},
			{ID: "T4", Name: "Fencing", ProjectID: "P1"},
		},
		Costs: map[string]model.CostValues{
			"T1": {Actual: 150, Target: 120, Remain: 10},
			"T3": {Target: 90},
			"T4": {Actual: 5.005},
		},
	}
	return old, cur
}

func TestCompareUploads_ByID(t *testing.T) {
	old, cur := compareFixture()
	got := CompareUploads(old, cur, MatchByID)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}

	want := []struct{ id, kind string }{
		{"T1", model.ChangeCost},
		{"T2", model.ChangeRemoved},
		{"T3", model.ChangeAdded},
	}
	for i, w := range want {
		if got[i].TaskID != w.id || got[i].Kind() != w.kind {
			t.Errorf("got[%d] = %s/%s, want %s/%s", i, got[i].TaskID, got[i].Kind(), w.id, w.kind)
		}
	}
	if got[1].NewValues != nil {
		t.Error("removed task should have no new values")
	}
	if got[2].OldValues != nil {
		t.Error("added task should have no old values")
	}
	if got[0].NewValues.Cost.Actual != 150 || got[0].OldValues.Cost.Actual != 100 {
		t.Errorf("cost values = %+v -> %+v", got[0].OldValues, got[0].NewValues)
	}
}

func TestCompareUploads_ByName(t *testing.T) {
	old := UploadSnapshot{
		Tasks: []model.Task{{ID: "A1", Name: "Piling"}},
		Costs: map[string]model.CostValues{"A1": {Actual: 100}},
	}
	cur := UploadSnapshot{
		Tasks: []model.Task{{ID: "B7", Name: "Piling"}},
		Costs: map[string]model.CostValues{"B7": {Actual: 100}},
	}
	if got := CompareUploads(old, cur, MatchByName); len(got) != 0 {
		t.Errorf("renumbered task with equal costs reported %d changes", len(got))
	}
	if got := CompareUploads(old, cur, MatchByID); len(got) != 2 {
		t.Errorf("by id: %d changes, want add + remove", len(got))
	}
}

func TestSummarize(t *testing.T) {
	old, cur := compareFixture()
	s := Summarize(CompareUploads(old, cur, MatchByID))
	want := model.ComparisonSummary{TotalChanges: 3, AddedTasks: 1, RemovedTasks: 1, CostChanges: 1, TotalCostChange: 40}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
}

func TestFilterChanges(t *testing.T) {
	old, cur := compareFixture()
	details := CompareUploads(old, cur, MatchByID)

	tests := []struct {
		name   string
		filter ChangeFilter
		want   int
	}{
		{"no filter", ChangeFilter{}, 3},
		{"added", ChangeFilter{ChangeType: model.ChangeAdded}, 1},
		{"modified", ChangeFilter{ChangeType: "modified"}, 1},
		{"increased", ChangeFilter{CostChange: "increased"}, 3},
		{"decreased", ChangeFilter{CostChange: "decreased"}, 2},
		{"text by id", ChangeFilter{Text: "t2", Method: MatchByID}, 1},
		{"text by name", ChangeFilter{Text: "deck", Method: MatchByName}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterChanges(details, tt.filter); len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseCompareMethod(t *testing.T) {
	for in, want := range map[string]string{"": MatchByID, "ID": MatchByID, " name ": MatchByName} {
		got, err := ParseCompareMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseCompareMethod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseCompareMethod("wbs"); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("err = %v, want ErrInvalidMethod", err)
	}
}
