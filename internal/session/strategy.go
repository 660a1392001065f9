package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/mastery"
	"github.com/abhisek/tutorloop/internal/store"
)

// selection is the outcome of a question strategy.
type selection struct {
	strategy Strategy
	topicID  string
	planID   string
	items    []Item
}

type startRequest struct {
	student store.StudentRecord
	opts    Options
	state   *mastery.StudentState
}

type strategyFunc func(ctx context.Context, o *Orchestrator, req *startRequest) (*selection, error)

var strategies = map[Strategy]strategyFunc{
	StrategyReview:      selectReview,
	StrategyRemediation: selectRemediation,
	StrategyTopic:       selectTopic,
	StrategyAdaptive:    selectAdaptive,
}

// selectReview serves the student's due review cards.
func selectReview(ctx context.Context, o *Orchestrator, req *startRequest) (*selection, error) {
	cards, err := o.scheduler.GetDueCards(ctx, req.student.ID, req.opts.TopicID, req.opts.QuestionCount)
	if err != nil {
		return nil, fmt.Errorf("due cards: %w", err)
	}

	pools := make(map[string][]content.Question)
	sel := &selection{strategy: StrategyReview, topicID: req.opts.TopicID}
	for _, c := range cards {
		pool, ok := pools[c.TopicID]
		if !ok {
			pool, err = o.source.GetQuestionsForTopic(ctx, c.TopicID, content.QuestionQuery{})
			if err != nil && !errors.Is(err, content.ErrNoActiveContent) {
				return nil, fmt.Errorf("questions for %s: %w", c.TopicID, err)
			}
			pools[c.TopicID] = pool
		}
		for _, q := range pool {
			if q.ID == c.QuestionID {
				sel.items = append(sel.items, Item{Question: q, CardID: c.ID})
				break
			}
		}
	}
	return sel, nil
}

// selectRemediation practices the next session of a fresh remediation
// plan, falling back to adaptive selection when no remediation is needed.
func selectRemediation(ctx context.Context, o *Orchestrator, req *startRequest) (*selection, error) {
	if o.planner != nil {
		plan, err := o.planner.CreatePlan(ctx, req.student, req.opts.Subject)
		if err != nil {
			return nil, fmt.Errorf("remediation plan: %w", err)
		}
		if plan != nil {
			if next := plan.NextSession(); next != nil {
				qs := next.PracticeQuestions()
				qs = qs[:min(len(qs), req.opts.QuestionCount)]
				if len(qs) > 0 {
					sel := &selection{strategy: StrategyRemediation, planID: plan.ID, topicID: qs[0].TopicID}
					for _, q := range qs {
						sel.items = append(sel.items, Item{Question: q})
					}
					return sel, nil
				}
			}
		}
	}
	o.logger.Debug("no remediation needed, using adaptive selection")
	return selectAdaptive(ctx, o, req)
}

// selectTopic picks questions from the requested topic around the
// student's current difficulty.
func selectTopic(ctx context.Context, o *Orchestrator, req *startRequest) (*selection, error) {
	return o.topicSelection(ctx, StrategyTopic, req.opts.TopicID, req)
}

// selectAdaptive picks the next topic on the student's learning path.
func selectAdaptive(ctx context.Context, o *Orchestrator, req *startRequest) (*selection, error) {
	progress := req.state.Progress(req.student.MasteredTopics)
	path, err := o.source.GetLearningPath(ctx, req.student.GradeLevel, req.opts.Subject, progress)
	if err != nil {
		return nil, err
	}
	topic, ok := mastery.SelectTopic(path, req.state.Tracker().CurrentDifficulty())
	if !ok {
		return nil, &content.NoContentError{GradeLevel: req.student.GradeLevel, Subject: req.opts.Subject}
	}
	return o.topicSelection(ctx, StrategyAdaptive, topic.ID, req)
}

func (o *Orchestrator) topicSelection(ctx context.Context, strategy Strategy, topicID string, req *startRequest) (*selection, error) {
	target := req.state.Tracker().CurrentDifficulty()
	pool, err := o.source.GetQuestionsForTopic(ctx, topicID, content.QuestionQuery{
		Difficulty:         content.IntPtr(target),
		AdaptiveDifficulty: true,
	})
	if err != nil {
		return nil, err
	}

	o.rngMu.Lock()
	picked := mastery.SelectAdaptiveQuestions(pool, target, req.opts.QuestionCount, o.rng)
	o.rngMu.Unlock()

	sel := &selection{strategy: strategy, topicID: topicID}
	for _, q := range picked {
		sel.items = append(sel.items, Item{Question: q})
	}
	return sel, nil
}
