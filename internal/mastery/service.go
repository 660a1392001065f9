package mastery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/store"
)

// StudentState is one student's tracker and topic statistics.
type StudentState struct {
	tracker *Tracker
	topics  map[string]TopicStats
}

func newStudentState(initial int) *StudentState {
	return &StudentState{
		tracker: NewTracker(initial),
		topics:  make(map[string]TopicStats),
	}
}

// Tracker returns the student's adaptive tracker.
func (st *StudentState) Tracker() *Tracker { return st.tracker }

// Topic returns the stats for one topic.
func (st *StudentState) Topic(topicID string) TopicStats { return st.topics[topicID] }

// MasteredTopics returns the mastered topic ids, sorted.
func (st *StudentState) MasteredTopics() []string {
	var ids []string
	for id, s := range st.topics {
		if s.Status() == StatusMastered {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Progress converts the state into the learning-path input of the content
// source. Topics in alreadyMastered stay mastered even without stats.
func (st *StudentState) Progress(alreadyMastered []string) content.Progress {
	p := content.Progress{
		Mastered: make(map[string]bool),
		Topics:   make(map[string]content.TopicProgress, len(st.topics)),
	}
	for _, id := range alreadyMastered {
		p.Mastered[id] = true
	}
	for id, s := range st.topics {
		p.Topics[id] = content.TopicProgress{Attempts: s.Attempts, Correct: s.Correct}
		if s.Status() == StatusMastered {
			p.Mastered[id] = true
		}
	}
	return p
}

func (st *StudentState) record(topicID string, correct bool, difficulty int) *StateTransition {
	st.tracker.RecordAttempt(correct, difficulty)

	before := st.topics[topicID]
	after := before
	after.Attempts++
	if correct {
		after.Correct++
	}
	st.topics[topicID] = after

	if before.Status() == after.Status() {
		return nil
	}
	return &StateTransition{TopicID: topicID, From: before.Status(), To: after.Status()}
}

// Service loads, updates and persists student states through a
// TrackerRepo. Calls are serialized.
type Service struct {
	mu   sync.Mutex
	repo store.TrackerRepo
	now  func() time.Time
}

// NewService returns a service persisting through repo.
func NewService(repo store.TrackerRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Load returns the stored state for a student, or a fresh one starting at
// initialDifficulty.
func (s *Service) Load(ctx context.Context, studentID string, initialDifficulty int) (*StudentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, studentID, initialDifficulty)
}

func (s *Service) load(ctx context.Context, studentID string, initialDifficulty int) (*StudentState, error) {
	snap, err := s.repo.LoadTracker(ctx, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return newStudentState(initialDifficulty), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tracker %s: %w", studentID, err)
	}
	return decodeState(snap.Payload)
}

// RecordAttempt records an answer for a student and topic, persists the
// result and returns the topic's status transition, if any.
func (s *Service) RecordAttempt(ctx context.Context, studentID, topicID string, correct bool, difficulty, initialDifficulty int) (*StateTransition, *StudentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx, studentID, initialDifficulty)
	if err != nil {
		return nil, nil, err
	}
	transition := st.record(topicID, correct, difficulty)

	payload, err := encodeState(st)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.SaveTracker(ctx, store.TrackerSnapshot{
		StudentID: studentID,
		Payload:   payload,
		UpdatedAt: s.now().UTC(),
	}); err != nil {
		return nil, nil, fmt.Errorf("save tracker %s: %w", studentID, err)
	}
	return transition, st, nil
}
