package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// cardRepo implements CardRepo on SQLite.
type cardRepo struct {
	db *sql.DB
}

var cardColumns = []string{
	"id", "student_id", "topic_id", "question_id", "difficulty", "next_review_at",
	"repetition", "interval_days", "ease", "last_quality", "reviews", "created_at", "updated_at",
}

func scanCard(rows *sql.Rows) (ReviewCard, error) {
	var c ReviewCard
	err := rows.Scan(&c.ID, &c.StudentID, &c.TopicID, &c.QuestionID, &c.Difficulty, &c.NextReviewAt,
		&c.Repetition, &c.IntervalDays, &c.Ease, &c.LastQuality, &c.Reviews, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *cardRepo) selectOne(ctx context.Context, pred *entsql.Predicate) (*ReviewCard, error) {
	q := builder.Select(cardColumns...).
		From(builder.Table(tableCards)).
		Where(pred).
		Limit(1)
	var out *ReviewCard
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		c, err := scanCard(rows)
		if err != nil {
			return err
		}
		out = &c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query review card: %w", err)
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *cardRepo) GetCard(ctx context.Context, id string) (*ReviewCard, error) {
	return r.selectOne(ctx, entsql.EQ("id", id))
}

func (r *cardRepo) FindCard(ctx context.Context, studentID, questionID string) (*ReviewCard, error) {
	return r.selectOne(ctx, entsql.And(
		entsql.EQ("student_id", studentID),
		entsql.EQ("question_id", questionID),
	))
}

func (r *cardRepo) SaveCard(ctx context.Context, c ReviewCard) error {
	q := builder.Insert(tableCards).
		Columns(cardColumns...).
		Values(c.ID, c.StudentID, c.TopicID, c.QuestionID, c.Difficulty, utc(c.NextReviewAt),
			c.Repetition, c.IntervalDays, c.Ease, c.LastQuality, c.Reviews, utc(c.CreatedAt), utc(c.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save review card: %w", err)
	}
	return nil
}

func (r *cardRepo) DueCards(ctx context.Context, studentID, topicID string, now time.Time, limit int) ([]ReviewCard, error) {
	pred := entsql.And(
		entsql.EQ("student_id", studentID),
		entsql.LTE("next_review_at", utc(now)),
	)
	if topicID != "" {
		pred = entsql.And(pred, entsql.EQ("topic_id", topicID))
	}
	q := builder.Select(cardColumns...).
		From(builder.Table(tableCards)).
		Where(pred).
		OrderBy(entsql.Asc("next_review_at"), entsql.Asc("id"))
	if limit > 0 {
		q.Limit(limit)
	}

	var out []ReviewCard
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		c, err := scanCard(rows)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query due cards: %w", err)
	}
	return out, nil
}
