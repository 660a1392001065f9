package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends runs fn against the SQLite store and the in-memory store.
func backends(t *testing.T, fn func(t *testing.T, r Repos)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, openTestStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode reports "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{tableStudents, tableMistakes, tableCards, tableCurricula, tableSessionEvents} {
		var got string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name,
		).Scan(&got)
		if err != nil {
			t.Errorf("table %s: %v", name, err)
		}
	}
}

func TestSequence(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Seeding again must not reset the counter.
	sc, err := newSequence(ctx, s.DB())
	if err != nil {
		t.Fatalf("new sequence: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestStudentRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()

		if _, err := r.Students().GetStudent(ctx, "s1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("get missing: err = %v, want ErrNotFound", err)
		}

		in := StudentRecord{
			ID:                "s1",
			GradeLevel:        6,
			MasteredTopics:    []string{"integers-intro"},
			CurrentTopic:      "integers-addition",
			CurrentDifficulty: 4,
			UpdatedAt:         base,
		}
		if err := r.Students().SaveStudent(ctx, in); err != nil {
			t.Fatalf("save: %v", err)
		}
		in.CurrentDifficulty = 5
		if err := r.Students().SaveStudent(ctx, in); err != nil {
			t.Fatalf("save again: %v", err)
		}

		got, err := r.Students().GetStudent(ctx, "s1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.CurrentDifficulty != 5 || got.GradeLevel != 6 {
			t.Errorf("got %+v", got)
		}
		if len(got.MasteredTopics) != 1 || got.MasteredTopics[0] != "integers-intro" {
			t.Errorf("mastered = %v", got.MasteredTopics)
		}
		if !got.UpdatedAt.Equal(base) {
			t.Errorf("updated_at = %v, want %v", got.UpdatedAt, base)
		}
	})
}

func TestMistakesOldestFirst(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()
		repo := r.Mistakes()

		add := func(id, subject string, offset time.Duration) {
			t.Helper()
			err := repo.AppendMistake(ctx, MistakeRecord{
				ID: id, StudentID: "s1", QuestionID: "q-" + id, TopicID: "t",
				Subject: subject, StudentAnswer: "3", CorrectAnswer: "-3", Timestamp: base.Add(offset),
			})
			if err != nil {
				t.Fatalf("append %s: %v", id, err)
			}
		}
		add("m2", "math", 2*time.Minute)
		add("m1", "math", time.Minute)
		add("m3", "ela", 3*time.Minute)

		got, err := repo.ListMistakes(ctx, "s1", "math")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
			t.Fatalf("math mistakes = %+v", got)
		}

		all, err := repo.ListMistakes(ctx, "s1", "")
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("all mistakes = %d, want 3", len(all))
		}

		if err := repo.SetMisconception(ctx, "m1", "negative-number-operations"); err != nil {
			t.Fatalf("set misconception: %v", err)
		}
		got, _ = repo.ListMistakes(ctx, "s1", "math")
		if got[0].MisconceptionID != "negative-number-operations" {
			t.Errorf("misconception = %q", got[0].MisconceptionID)
		}
	})
}

func TestDueCardsOrdering(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()
		repo := r.Cards()

		cards := []ReviewCard{
			{ID: "c1", StudentID: "s1", TopicID: "a", QuestionID: "q1", NextReviewAt: base.Add(-time.Hour)},
			{ID: "c2", StudentID: "s1", TopicID: "a", QuestionID: "q2", NextReviewAt: base.Add(-48 * time.Hour)},
			{ID: "c3", StudentID: "s1", TopicID: "b", QuestionID: "q3", NextReviewAt: base.Add(-2 * time.Hour)},
			{ID: "c4", StudentID: "s1", TopicID: "a", QuestionID: "q4", NextReviewAt: base.Add(time.Hour)},
			{ID: "c5", StudentID: "s2", TopicID: "a", QuestionID: "q1", NextReviewAt: base.Add(-time.Hour)},
		}
		for _, c := range cards {
			c.Ease = 2.5
			c.CreatedAt, c.UpdatedAt = base, base
			if err := repo.SaveCard(ctx, c); err != nil {
				t.Fatalf("save %s: %v", c.ID, err)
			}
		}

		due, err := repo.DueCards(ctx, "s1", "", base, 0)
		if err != nil {
			t.Fatalf("due: %v", err)
		}
		ids := make([]string, len(due))
		for i, c := range due {
			ids[i] = c.ID
		}
		want := []string{"c2", "c3", "c1"}
		if len(ids) != len(want) {
			t.Fatalf("due = %v, want %v", ids, want)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("due = %v, want %v", ids, want)
			}
		}

		topicDue, _ := repo.DueCards(ctx, "s1", "a", base, 1)
		if len(topicDue) != 1 || topicDue[0].ID != "c2" {
			t.Errorf("topic due = %+v", topicDue)
		}

		found, err := repo.FindCard(ctx, "s2", "q1")
		if err != nil || found.ID != "c5" {
			t.Errorf("find = %+v, %v", found, err)
		}
		if _, err := repo.GetCard(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("get missing: err = %v", err)
		}
	})
}

func TestCurriculumLatestUsesSemver(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()
		repo := r.Curricula()

		for i, v := range []string{"1.9", "2.0", "1.10"} {
			err := repo.SaveCurriculum(ctx, CurriculumRecord{
				ID: "c" + v, GradeLevel: 6, Subject: "math", Version: v,
				Payload: []byte(`{}`), CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
			if err != nil {
				t.Fatalf("save %s: %v", v, err)
			}
		}
		err := repo.SaveCurriculum(ctx, CurriculumRecord{ID: "e1", GradeLevel: 5, Subject: "ela", Version: "1.0", CreatedAt: base})
		if err != nil {
			t.Fatalf("save ela: %v", err)
		}

		latest, err := repo.LatestCurriculum(ctx, 6, "math")
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if latest.Version != "2.0" {
			t.Errorf("latest version = %q, want 2.0", latest.Version)
		}

		versions, _ := repo.ListCurriculumVersions(ctx, 6, "math")
		if len(versions) != 3 || versions[2].Version != "1.9" {
			t.Errorf("versions = %+v", versions)
		}

		keys, _ := repo.ListCurriculumKeys(ctx)
		if len(keys) != 2 || keys[0] != (CurriculumKey{GradeLevel: 5, Subject: "ela"}) {
			t.Errorf("keys = %+v", keys)
		}

		if _, err := repo.LatestCurriculum(ctx, 9, "math"); !errors.Is(err, ErrNotFound) {
			t.Errorf("latest missing: err = %v", err)
		}
	})
}

func TestFeedbackRatingRange(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()
		repo := r.Feedback()

		if err := repo.AppendFeedback(ctx, FeedbackRecord{ID: "f0", GradeLevel: 6, Subject: "math", Rating: 6}); err == nil {
			t.Fatal("expected error for rating 6")
		}
		if err := repo.AppendFeedback(ctx, FeedbackRecord{ID: "f1", GradeLevel: 6, Subject: "math", Rating: 4, CreatedAt: base}); err != nil {
			t.Fatalf("append: %v", err)
		}
		got, err := repo.ListFeedback(ctx, 6, "math")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].Rating != 4 {
			t.Errorf("feedback = %+v", got)
		}
	})
}

func TestActivePlanNewest(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()
		repo := r.Plans()

		plans := []PlanRecord{
			{ID: "p1", StudentID: "s1", Subject: "math", Status: PlanActive, CreatedAt: base},
			{ID: "p2", StudentID: "s1", Subject: "math", Status: PlanActive, CreatedAt: base.Add(time.Hour)},
			{ID: "p3", StudentID: "s1", Subject: "math", Status: PlanSuperseded, CreatedAt: base.Add(2 * time.Hour)},
		}
		for _, p := range plans {
			p.Payload = []byte(`{"id":"` + p.ID + `"}`)
			p.UpdatedAt = p.CreatedAt
			if err := repo.SavePlan(ctx, p); err != nil {
				t.Fatalf("save %s: %v", p.ID, err)
			}
		}

		got, err := repo.ActivePlan(ctx, "s1", "math")
		if err != nil {
			t.Fatalf("active: %v", err)
		}
		if got.ID != "p2" {
			t.Errorf("active plan = %q, want p2", got.ID)
		}
		if _, err := repo.ActivePlan(ctx, "s1", "ela"); !errors.Is(err, ErrNotFound) {
			t.Errorf("active ela: err = %v", err)
		}
	})
}

func TestTrackerSnapshotReplace(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()
		repo := r.Trackers()

		if _, err := repo.LoadTracker(ctx, "s1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("load missing: err = %v", err)
		}
		for _, payload := range []string{`{"v":1}`, `{"v":2}`} {
			if err := repo.SaveTracker(ctx, TrackerSnapshot{StudentID: "s1", Payload: []byte(payload), UpdatedAt: base}); err != nil {
				t.Fatalf("save: %v", err)
			}
		}
		got, err := repo.LoadTracker(ctx, "s1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if string(got.Payload) != `{"v":2}` {
			t.Errorf("payload = %s", got.Payload)
		}
	})
}

func TestEventsSequenced(t *testing.T) {
	backends(t, func(t *testing.T, r Repos) {
		ctx := context.Background()
		repo := r.Events()

		for _, kind := range []string{"session_started", "answer_submitted", "session_completed"} {
			err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "sess", StudentID: "s1", Kind: kind, Payload: []byte(`{}`)})
			if err != nil {
				t.Fatalf("append %s: %v", kind, err)
			}
		}
		for _, ok := range []bool{true, false} {
			err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "anthropic", Model: "m", Purpose: "hint", Success: ok})
			if err != nil {
				t.Fatalf("append llm: %v", err)
			}
		}

		events, err := repo.QuerySessionEvents(ctx, "s1", QueryOpts{After: 1})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(events) != 2 || events[0].Kind != "answer_submitted" || events[0].Sequence >= events[1].Sequence {
			t.Errorf("events = %+v", events)
		}

		llm, err := repo.QueryLLMRequests(ctx, QueryOpts{Limit: 1})
		if err != nil {
			t.Fatalf("query llm: %v", err)
		}
		if len(llm) != 1 || llm[0].Success || llm[0].Sequence != 5 {
			t.Errorf("llm events = %+v", llm)
		}
	})
}
