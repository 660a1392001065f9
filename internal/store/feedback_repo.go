package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// feedbackRepo implements FeedbackRepo on SQLite.
type feedbackRepo struct {
	db *sql.DB
}

var feedbackColumns = []string{"id", "grade_level", "subject", "topic_id", "student_id", "rating", "comment", "created_at"}

func (r *feedbackRepo) AppendFeedback(ctx context.Context, f FeedbackRecord) error {
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("save feedback: rating %d out of range 1-5", f.Rating)
	}
	q := builder.Insert(tableFeedback).
		Columns(feedbackColumns...).
		Values(f.ID, f.GradeLevel, f.Subject, f.TopicID, f.StudentID, f.Rating, f.Comment, utc(f.CreatedAt))
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

func (r *feedbackRepo) ListFeedback(ctx context.Context, gradeLevel int, subject string) ([]FeedbackRecord, error) {
	q := builder.Select(feedbackColumns...).
		From(builder.Table(tableFeedback)).
		Where(entsql.And(
			entsql.EQ("grade_level", gradeLevel),
			entsql.EQ("subject", subject),
		)).
		OrderBy(entsql.Asc("created_at"))
	var out []FeedbackRecord
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var f FeedbackRecord
		if err := rows.Scan(&f.ID, &f.GradeLevel, &f.Subject, &f.TopicID, &f.StudentID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return err
		}
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	return out, nil
}
