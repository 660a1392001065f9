package remediation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/tutorloop/internal/catalog"
	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/llm"
	"github.com/abhisek/tutorloop/internal/store"
)

// Planner builds and tracks remediation plans.
type Planner struct {
	analyzer *diagnosis.Analyzer
	source   content.Source
	plans    store.PlanRepo
	lessons  *LessonWriter
	now      func() time.Time
}

// NewPlanner creates a planner. lessons may be nil, in which case
// explanations come from the catalog.
func NewPlanner(analyzer *diagnosis.Analyzer, source content.Source, plans store.PlanRepo, lessons *LessonWriter) *Planner {
	return &Planner{
		analyzer: analyzer,
		source:   source,
		plans:    plans,
		lessons:  lessons,
		now:      time.Now,
	}
}

// SetClock overrides the planner's time source.
func (p *Planner) SetClock(now func() time.Time) {
	p.now = now
}

// CreatePlan analyzes the student's mistakes in subject and persists a
// plan addressing the most severe patterns. It returns nil when no
// remediation is needed. A new plan supersedes the student's active plan
// for the subject.
func (p *Planner) CreatePlan(ctx context.Context, student store.StudentRecord, subject string) (*Plan, error) {
	ctx = llm.WithStudent(ctx, student.ID)
	patterns, err := p.analyzer.AnalyzePatterns(ctx, student.ID, subject)
	if err != nil {
		return nil, fmt.Errorf("analyze patterns: %w", err)
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	patterns = patterns[:min(len(patterns), MaxSessions)]
	recs := diagnosis.GenerateRecommendations(patterns)

	now := p.now().UTC()
	plan := &Plan{
		ID:         uuid.New().String(),
		StudentID:  student.ID,
		Subject:    subject,
		GradeLevel: student.GradeLevel,
		Priority:   diagnosis.PriorityLow,
		Status:     store.PlanActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var used []string
	for i, rec := range recs {
		m := catalog.Get(rec.MisconceptionID)
		if m == nil {
			continue
		}
		in := &activityInput{
			misconception:  m,
			recommendation: rec,
			pattern:        patterns[i],
			gradeLevel:     student.GradeLevel,
			minutes:        rec.EstimatedMinutes,
			used:           used,
		}
		session, err := p.buildSession(ctx, in)
		if err != nil {
			return nil, err
		}
		used = in.used
		plan.Sessions = append(plan.Sessions, session)
		if rec.Priority.Rank() > plan.Priority.Rank() {
			plan.Priority = rec.Priority
		}
	}
	if len(plan.Sessions) == 0 {
		return nil, nil
	}

	if err := p.supersede(ctx, student.ID, subject, now); err != nil {
		return nil, err
	}
	if err := p.save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Planner) buildSession(ctx context.Context, in *activityInput) (Session, error) {
	s := Session{
		ID:               uuid.New().String(),
		Title:            "Fixing " + strings.ToLower(in.misconception.Name),
		MisconceptionID:  in.misconception.ID,
		Priority:         in.recommendation.Priority,
		Objectives:       objectives(in.misconception, in.pattern),
		EstimatedMinutes: in.minutes,
	}
	for _, t := range ActivityOrder {
		a, err := activityBuilders[t](ctx, p, in)
		if err != nil {
			return Session{}, fmt.Errorf("build %s activity: %w", t, err)
		}
		s.Activities = append(s.Activities, a)
	}
	return s, nil
}

func objectives(m *catalog.Misconception, pattern diagnosis.DetectedPattern) []string {
	out := []string{
		fmt.Sprintf("Explain why the mistake behind %q happens", m.Name),
	}
	if len(m.Strategies) > 0 {
		out = append(out, m.Strategies[0])
	}
	if len(pattern.AffectedTopics) > 0 {
		out = append(out, fmt.Sprintf("Answer practice questions on %s without repeating the error",
			strings.Join(pattern.AffectedTopics, ", ")))
	}
	return out
}

func (p *Planner) supersede(ctx context.Context, studentID, subject string, now time.Time) error {
	active, err := p.ActivePlan(ctx, studentID, subject)
	if err != nil || active == nil {
		return err
	}
	active.Status = store.PlanSuperseded
	active.UpdatedAt = now
	return p.save(ctx, active)
}

// RecordProgress marks the plan's next session completed with the given
// results. The plan completes when every session has been done.
func (p *Planner) RecordProgress(ctx context.Context, planID string, correct, attempts int) (*Plan, error) {
	rec, err := p.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", planID, err)
	}
	plan, err := decodePlan(rec)
	if err != nil {
		return nil, err
	}

	if plan.Progress.CompletedSessions < len(plan.Sessions) {
		plan.Progress.CompletedSessions++
	}
	plan.Progress.TotalCorrect += max(correct, 0)
	plan.Progress.TotalAttempts += max(attempts, 0)
	if plan.Progress.CompletedSessions >= len(plan.Sessions) {
		plan.Status = store.PlanCompleted
	}
	plan.UpdatedAt = p.now().UTC()

	if err := p.save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ActivePlan returns the student's active plan for subject, or nil.
func (p *Planner) ActivePlan(ctx context.Context, studentID, subject string) (*Plan, error) {
	rec, err := p.plans.ActivePlan(ctx, studentID, subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active plan: %w", err)
	}
	return decodePlan(rec)
}

func (p *Planner) save(ctx context.Context, plan *Plan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	err = p.plans.SavePlan(ctx, store.PlanRecord{
		ID:        plan.ID,
		StudentID: plan.StudentID,
		Subject:   plan.Subject,
		Priority:  string(plan.Priority),
		Status:    plan.Status,
		Payload:   payload,
		CreatedAt: plan.CreatedAt,
		UpdatedAt: plan.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func decodePlan(rec *store.PlanRecord) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal(rec.Payload, &plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", rec.ID, err)
	}
	plan.Status = rec.Status
	return &plan, nil
}
