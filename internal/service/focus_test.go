package service

import (
	"testing"
	"time"

	"github.com/onething/internal/db"
)

func eligibleTask(id string, rating int, createdAt time.Time) db.TaskItem {
	return db.TaskItem{
		ID:        id,
		Text:      "task " + id,
		Category:  db.CategoryTask,
		Rating:    rating,
		CreatedAt: createdAt,
	}
}

func TestSelectOneThingHighestRatingWins(t *testing.T) {
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	items := []db.TaskItem{
		eligibleTask("1", 3, base.Add(100*time.Millisecond)),
		eligibleTask("2", 5, base.Add(50*time.Millisecond)),
	}

	selected := SelectOneThing(items)
	if selected == nil {
		t.Fatal("expected a selection")
	}
	// 高评分优先于新近度
	if selected.ID != "2" {
		t.Fatalf("expected task 2, got %s", selected.ID)
	}
}

func TestSelectOneThingSkipsCompleted(t *testing.T) {
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	high := eligibleTask("2", 5, base.Add(50*time.Millisecond))
	high.Completed = true
	items := []db.TaskItem{
		eligibleTask("1", 3, base.Add(100*time.Millisecond)),
		high,
	}

	selected := SelectOneThing(items)
	if selected == nil || selected.ID != "1" {
		t.Fatalf("expected task 1, got %+v", selected)
	}
}

func TestSelectOneThingFiltersIneligible(t *testing.T) {
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)

	cases := []struct {
		name   string
		mutate func(*db.TaskItem)
	}{
		{"delegated", func(item *db.TaskItem) { item.Delegated = true }},
		{"automated", func(item *db.TaskItem) { item.Automated = true }},
		{"completed", func(item *db.TaskItem) { item.Completed = true }},
		{"routine", func(item *db.TaskItem) { item.IsRoutine = true }},
		{"unrated", func(item *db.TaskItem) { item.Rating = 0 }},
		{"ignored", func(item *db.TaskItem) { item.Category = db.CategoryIgnored }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := eligibleTask("1", 5, base)
			tc.mutate(&item)
			if selected := SelectOneThing([]db.TaskItem{item}); selected != nil {
				t.Fatalf("expected no selection, got %s", selected.ID)
			}
		})
	}
}

func TestSelectOneThingTieBreakByCreatedAt(t *testing.T) {
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	items := []db.TaskItem{
		eligibleTask("old", 4, base),
		eligibleTask("new", 4, base.Add(time.Second)),
	}

	selected := SelectOneThing(items)
	if selected == nil || selected.ID != "new" {
		t.Fatalf("expected newer task to win tie, got %+v", selected)
	}
}

func TestSelectOneThingTieBreakFallsBackToID(t *testing.T) {
	// 评分与创建时间都相同时按 ID 降序兜底
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	items := []db.TaskItem{
		eligibleTask("aaa", 4, base),
		eligibleTask("zzz", 4, base),
	}

	selected := SelectOneThing(items)
	if selected == nil || selected.ID != "zzz" {
		t.Fatalf("expected id tie-break, got %+v", selected)
	}
}

func TestSelectOneThingDeterministic(t *testing.T) {
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	items := []db.TaskItem{
		eligibleTask("1", 2, base),
		eligibleTask("2", 4, base.Add(time.Minute)),
		eligibleTask("3", 4, base.Add(2*time.Minute)),
	}

	first := SelectOneThing(items)
	second := SelectOneThing(items)
	if first == nil || second == nil || first.ID != second.ID {
		t.Fatalf("expected stable selection, got %+v and %+v", first, second)
	}
}

func TestSelectOneThingEmpty(t *testing.T) {
	if selected := SelectOneThing(nil); selected != nil {
		t.Fatalf("expected nil for empty input, got %s", selected.ID)
	}
}

func TestCategoryFromRating(t *testing.T) {
	cases := map[int]string{
		0: "",
		1: db.CategoryGiveEnergy,
		2: db.CategoryGiveEnergy,
		3: db.CategoryIncreaseRate,
		4: db.CategoryIncreaseRate,
		5: db.CategoryMakeMoney,
	}

	for rating, want := range cases {
		if got := CategoryFromRating(rating); got != want {
			t.Fatalf("rating %d: expected %q, got %q", rating, want, got)
		}
	}
}

func TestClampRating(t *testing.T) {
	if got := clampRating(-1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := clampRating(9); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := clampRating(3); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}
