package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// performanceRepo implements PerformanceRepo on SQLite.
type performanceRepo struct {
	db *sql.DB
}

var performanceColumns = []string{
	"id", "session_id", "student_id", "grade_level", "subject", "topic_id", "session_type",
	"correct", "total", "accuracy", "duration_seconds", "expected_seconds", "average_difficulty", "completed_at",
}

func (r *performanceRepo) AppendPerformance(ctx context.Context, p PerformanceRecord) error {
	q := builder.Insert(tablePerformance).
		Columns(performanceColumns...).
		Values(p.ID, p.SessionID, p.StudentID, p.GradeLevel, p.Subject, p.TopicID, p.SessionType,
			p.Correct, p.Total, p.Accuracy, p.DurationSeconds, p.ExpectedSeconds, p.AverageDifficulty, utc(p.CompletedAt))
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save performance record: %w", err)
	}
	return nil
}

func (r *performanceRepo) ListPerformance(ctx context.Context, gradeLevel int, subject string) ([]PerformanceRecord, error) {
	q := builder.Select(performanceColumns...).
		From(builder.Table(tablePerformance)).
		Where(entsql.And(
			entsql.EQ("grade_level", gradeLevel),
			entsql.EQ("subject", subject),
		)).
		OrderBy(entsql.Asc("completed_at"))

	var out []PerformanceRecord
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var p PerformanceRecord
		if err := rows.Scan(&p.ID, &p.SessionID, &p.StudentID, &p.GradeLevel, &p.Subject, &p.TopicID, &p.SessionType,
			&p.Correct, &p.Total, &p.Accuracy, &p.DurationSeconds, &p.ExpectedSeconds, &p.AverageDifficulty, &p.CompletedAt); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query performance records: %w", err)
	}
	return out, nil
}
