package storage

import (
	"encoding/json"
	"testing"
	"time"

	"taskboard-api/domain"
)

func TestEscapeFilterValue(t *testing.T) {
	cases := map[string]string{
		"Design":     "Design",
		"O'Brien":    "O''Brien",
		"a' or 'b":   "a'' or ''b",
		"no quotes!": "no quotes!",
	}
	for in, want := range cases {
		if got := escapeFilterValue(in); got != want {
			t.Fatalf("escapeFilterValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTaskEntityRoundTrip(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	task := domain.Task{
		ID:        "t1",
		ProjectID: "p1",
		Name:      "Spec",
		Status:    domain.StatusInProgress,
		CreatedAt: created,
		EndDate:   "2025-01-31",
	}

	data, err := json.Marshal(taskToEntity(task))
	if err != nil {
		t.Fatalf("marshal entity: %v", err)
	}
	var ent taskEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		t.Fatalf("unmarshal entity: %v", err)
	}
	got := taskFromEntity(ent)
	if got != task {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, task)
	}
	if ent.PartitionKey != "p1" || ent.RowKey != "t1" {
		t.Fatalf("unexpected keys: %q/%q", ent.PartitionKey, ent.RowKey)
	}
}

func TestSortTasksNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "mid", CreatedAt: base.Add(time.Hour)},
	}
	sortTasksNewestFirst(tasks)
	wantOrder := []string{"new", "mid", "old"}
	for i, id := range wantOrder {
		if tasks[i].ID != id {
			t.Fatalf("position %d: got %q want %q", i, tasks[i].ID, id)
		}
	}
}
